package orderflow

import "github.com/polkiloo/foodrush/internal/domain/model"

// GenericStatusMessage is used for statuses missing from the lookup table.
const GenericStatusMessage = "สถานะคำสั่งซื้อมีการเปลี่ยนแปลง"

var statusMessages = map[model.OrderStatus]string{
	model.OrderStatusPending:        "ได้รับคำสั่งซื้อแล้ว รอร้านอาหารยืนยัน",
	model.OrderStatusConfirmed:      "ร้านอาหารยืนยันคำสั่งซื้อแล้ว",
	model.OrderStatusPreparing:      "ร้านอาหารกำลังเตรียมอาหารของคุณ",
	model.OrderStatusReadyForPickup: "อาหารพร้อมแล้ว กำลังรอไรเดอร์มารับ",
	model.OrderStatusAssignedRider:  "ไรเดอร์รับงานแล้ว กำลังเดินทางไปที่ร้าน",
	model.OrderStatusPickedUp:       "ไรเดอร์รับอาหารเรียบร้อยแล้ว",
	model.OrderStatusOutForDelivery: "ไรเดอร์กำลังนำส่งอาหารถึงคุณ",
	model.OrderStatusDelivered:      "จัดส่งสำเร็จแล้ว ขอบคุณที่ใช้บริการ",
	model.OrderStatusCancelled:      "คำสั่งซื้อถูกยกเลิก",
}

// StatusMessage returns the customer-facing message for status.
func StatusMessage(status model.OrderStatus) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return GenericStatusMessage
}

var deliveryMessages = map[model.DeliveryStatus]string{
	model.DeliveryStatusAssigned:        "ไรเดอร์รับงานจัดส่งแล้ว",
	model.DeliveryStatusArrivedPickup:   "ไรเดอร์ถึงร้านอาหารแล้ว",
	model.DeliveryStatusPickedUp:        "ไรเดอร์รับอาหารแล้ว",
	model.DeliveryStatusGoingToDelivery: "ไรเดอร์กำลังเดินทางไปส่งอาหาร",
	model.DeliveryStatusDelivered:       "ส่งอาหารเรียบร้อยแล้ว",
	model.DeliveryStatusCancelled:       "การจัดส่งถูกยกเลิก",
}

// DeliveryStatusMessage returns the rider-facing message for a delivery status.
func DeliveryStatusMessage(status model.DeliveryStatus) string {
	if msg, ok := deliveryMessages[status]; ok {
		return msg
	}
	return GenericStatusMessage
}
