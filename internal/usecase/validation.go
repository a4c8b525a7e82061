package usecase

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
)

const numberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var orderNumberPattern = regexp.MustCompile(`^FR-\d{8}-[A-Z0-9]{8}$`)

// GenerateOrderNumber returns a human readable number like FR-20240501-7KQ2M9XD.
func GenerateOrderNumber(now time.Time) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("order number entropy: %v", err))
	}
	for i := range buf {
		buf[i] = numberAlphabet[int(buf[i])%len(numberAlphabet)]
	}
	return "FR-" + now.UTC().Format("20060102") + "-" + string(buf)
}

// ValidateOrderNumber checks the FR-YYYYMMDD-XXXXXXXX format.
func ValidateOrderNumber(number string) bool {
	if !orderNumberPattern.MatchString(number) {
		return false
	}
	_, err := time.Parse("20060102", number[3:11])
	return err == nil
}

// ValidateNewOrder checks a checkout payload before pricing.
func ValidateNewOrder(in model.NewOrder) error {
	if strings.TrimSpace(in.RestaurantID) == "" {
		return fmt.Errorf("%w: restaurant required", domainErrors.ErrInvalidOrder)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: %w", domainErrors.ErrInvalidOrder, domainErrors.ErrEmptyCart)
	}
	if strings.TrimSpace(in.Customer.Name) == "" || strings.TrimSpace(in.Customer.Phone) == "" || strings.TrimSpace(in.Customer.Address) == "" {
		return fmt.Errorf("%w: customer name, phone and address required", domainErrors.ErrInvalidOrder)
	}
	if in.DeliveryFee.IsNegative() {
		return fmt.Errorf("%w: negative delivery fee", domainErrors.ErrInvalidOrder)
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return fmt.Errorf("%w: item %d has no product", domainErrors.ErrInvalidOrder, i)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("%w: item %d quantity must be at least 1", domainErrors.ErrInvalidOrder, i)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item %d has negative price", domainErrors.ErrInvalidOrder, i)
		}
		for _, a := range it.Addons {
			if a.Price.IsNegative() {
				return fmt.Errorf("%w: item %d has negative add-on price", domainErrors.ErrInvalidOrder, i)
			}
		}
	}
	return nil
}
