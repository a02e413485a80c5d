package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"shipping-label-service/internal/model"
)

// ErrMissingWeight is returned when a price cannot be computed because
// the shipment carries no weight at all. Callers must treat this as
// "service not assignable", never as a zero price.
var ErrMissingWeight = errors.New("cannot calculate price without package weight")

// ErrUnknownService is returned for a service id outside the catalog.
var ErrUnknownService = errors.New("unknown shipping service")

// MostAffordable is the pseudo-service resolved per shipment to the
// cheapest computable tier.
const MostAffordable = "most_affordable"

// Service is one pricing tier.
type Service struct {
	ID        string
	Name      string
	BasePrice decimal.Decimal
	PerOzRate decimal.Decimal
}

// Catalog order doubles as tie-break precedence for most_affordable.
var services = []Service{
	{
		ID:        model.ServicePriorityMail,
		Name:      "Priority Mail",
		BasePrice: decimal.NewFromFloat(5.00),
		PerOzRate: decimal.NewFromFloat(0.10),
	},
	{
		ID:        model.ServiceGroundShipping,
		Name:      "Ground Shipping",
		BasePrice: decimal.NewFromFloat(2.50),
		PerOzRate: decimal.NewFromFloat(0.05),
	},
}

// Services returns the tier catalog in precedence order.
func Services() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

// Lookup finds a tier by id.
func Lookup(serviceID string) (Service, error) {
	for _, svc := range services {
		if svc.ID == serviceID {
			return svc, nil
		}
	}
	return Service{}, fmt.Errorf("%w: %s", ErrUnknownService, serviceID)
}

// TotalOunces converts a lbs/oz weight pair to ounces. Nil components
// count as zero.
func TotalOunces(weightLbs, weightOz *int) int {
	total := 0
	if weightLbs != nil {
		total += *weightLbs * 16
	}
	if weightOz != nil {
		total += *weightOz
	}
	return total
}

// Price computes base_price + per_oz_rate × total_ounces for a tier,
// rounded to cents. A weight of zero ounces means no weight was usable
// and the price is not computable.
func Price(serviceID string, weightLbs, weightOz *int) (decimal.Decimal, error) {
	svc, err := Lookup(serviceID)
	if err != nil {
		return decimal.Zero, err
	}
	return svc.Price(weightLbs, weightOz)
}

// Price computes this tier's price for the given weight.
func (s Service) Price(weightLbs, weightOz *int) (decimal.Decimal, error) {
	totalOz := TotalOunces(weightLbs, weightOz)
	if totalOz <= 0 {
		return decimal.Zero, ErrMissingWeight
	}

	price := s.BasePrice.Add(s.PerOzRate.Mul(decimal.NewFromInt(int64(totalOz))))
	return price.Round(2), nil
}

// Quote is a tier plus its computed price for a concrete weight. Price
// is nil when the weight was insufficient to compute one.
type Quote struct {
	Service
	Price *decimal.Decimal
}

// AvailableServices quotes every tier for the given weight, cheapest
// first. Tiers whose price cannot be computed sort last, in catalog
// order.
func AvailableServices(weightLbs, weightOz *int) []Quote {
	quotes := make([]Quote, 0, len(services))
	for _, svc := range services {
		q := Quote{Service: svc}
		if price, err := svc.Price(weightLbs, weightOz); err == nil {
			p := price
			q.Price = &p
		}
		quotes = append(quotes, q)
	}

	// Insertion sort keeps the catalog order stable on ties, so
	// priority_mail wins an exact tie.
	for i := 1; i < len(quotes); i++ {
		for j := i; j > 0 && less(quotes[j], quotes[j-1]); j-- {
			quotes[j], quotes[j-1] = quotes[j-1], quotes[j]
		}
	}
	return quotes
}

func less(a, b Quote) bool {
	if a.Price == nil || b.Price == nil {
		return b.Price == nil && a.Price != nil
	}
	return a.Price.LessThan(*b.Price)
}

// CheapestService resolves most_affordable: the tier with the lowest
// computable price, ties broken by catalog precedence.
func CheapestService(weightLbs, weightOz *int) (Service, decimal.Decimal, error) {
	quotes := AvailableServices(weightLbs, weightOz)
	if len(quotes) == 0 || quotes[0].Price == nil {
		return Service{}, decimal.Zero, ErrMissingWeight
	}
	return quotes[0].Service, *quotes[0].Price, nil
}
