package tvu

// An Order is an IHO hydrographic survey order classification.
type Order int

const (
	OrderNone Order = iota
	OrderSpecial
	Order1
	Order2
	Order3
)

func (o Order) String() string {
	switch o {
	case OrderNone:
		return "none"
	case OrderSpecial:
		return "special"
	case Order1:
		return "order1"
	case Order2:
		return "order2"
	case Order3:
		return "order3"
	default:
		return "unknown"
	}
}

// DepthUncertainty returns the depth-dependent vertical uncertainty allowed
// by the given survey order. Depth is the magnitude of elevation below the
// reference datum, in the same unit as elevation. Datasets without an order
// have no depth uncertainty model and return an InvalidOrderError.
func DepthUncertainty(depth float64, order Order) (float64, error) {
	switch order {
	case OrderSpecial:
		return 2, nil
	case Order1:
		return 5 + 0.05*depth, nil
	case Order2:
		return 20 + 0.05*depth, nil
	case Order3:
		return 150 + 0.05*depth, nil
	default:
		return 0, &InvalidOrderError{Order: order}
	}
}
