package flow

import (
	"github.com/shopspring/decimal"

	"tour-booking/internal/data/entity"
)

const TransportationPremium = "premium"

// Fixed surcharges. Not configurable at runtime.
var (
	insurancePerTraveler = decimal.NewFromInt(500)
	photographyFee       = decimal.NewFromInt(1500)
	privateGuideFee      = decimal.NewFromInt(2500)
	premiumTransportFee  = decimal.NewFromInt(2000)
)

// TotalPrice computes the booking total for a draft against a package.
// The result is an exact decimal sum, recomputed on every call:
//
//	pkg.Price * travelers
//	+ 500 * travelers   if travel insurance
//	+ 1500              if photography
//	+ 2500              if private guide
//	+ 2000              if premium transportation
func TotalPrice(pkg *entity.TourPackage, d *Draft) decimal.Decimal {
	travelers := decimal.NewFromInt(int64(d.TravelerCount()))

	total := pkg.Price.Mul(travelers)
	if d.TravelInsurance {
		total = total.Add(insurancePerTraveler.Mul(travelers))
	}
	if d.Photography {
		total = total.Add(photographyFee)
	}
	if d.PrivateGuide {
		total = total.Add(privateGuideFee)
	}
	if d.Transportation == TransportationPremium {
		total = total.Add(premiumTransportFee)
	}
	return total
}
