package demand

import (
	"math"
	"math/rand/v2"

	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// Source is the random stream behind demand. *rand.Rand satisfies it.
type Source interface {
	NormFloat64() float64
	IntN(n int) int
}

// NewSource returns a deterministic stream for the given seed
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Options shapes the daily demand distribution
type Options struct {
	Mean        float64
	StdDev      float64
	MinQuantity entities.Quantity
	MaxQuantity entities.Quantity
}

// MaxMean and MaxStdDev bound the distribution so a day's count stays allocatable
const (
	MaxMean   = 10000
	MaxStdDev = 10000
)

// DefaultOptions matches the stock simulation settings
func DefaultOptions() Options {
	return Options{Mean: 5.0, StdDev: 2.0, MinQuantity: 1, MaxQuantity: 5}
}

func (o Options) validate() error {
	if o.Mean < 0 || math.IsNaN(o.Mean) {
		return entities.NewValidationError("demand_mean", "mean cannot be negative, got %v", o.Mean)
	}
	if o.Mean > MaxMean {
		return entities.NewValidationError("demand_mean", "mean cannot exceed %d, got %v", MaxMean, o.Mean)
	}
	if o.StdDev < 0 || math.IsNaN(o.StdDev) {
		return entities.NewValidationError("demand_std_dev", "standard deviation cannot be negative, got %v", o.StdDev)
	}
	if o.StdDev > MaxStdDev {
		return entities.NewValidationError("demand_std_dev", "standard deviation cannot exceed %d, got %v", MaxStdDev, o.StdDev)
	}
	if o.MinQuantity <= 0 {
		return entities.NewValidationError("demand_min_quantity", "minimum quantity must be positive, got %d", o.MinQuantity)
	}
	if o.MaxQuantity < o.MinQuantity {
		return entities.NewValidationError("demand_max_quantity", "maximum quantity %d is below minimum %d", o.MaxQuantity, o.MinQuantity)
	}
	return nil
}

// Request is one generated order to be created by the manufacturing manager
type Request struct {
	ProductID entities.ProductID
	Quantity  entities.Quantity
}

// Generator draws daily customer demand from an injected random source
type Generator struct {
	rng  Source
	opts Options
}

// NewGenerator creates a generator. The same source seed yields the same demand.
func NewGenerator(rng Source, opts Options) (*Generator, error) {
	if rng == nil {
		return nil, entities.NewValidationError("source", "random source is required")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Generator{rng: rng, opts: opts}, nil
}

// Count draws how many orders arrive today: a normal draw rounded to the
// nearest integer and floored at zero.
func (g *Generator) Count() int {
	n := math.Round(g.rng.NormFloat64()*g.opts.StdDev + g.opts.Mean)
	if n < 0 {
		return 0
	}
	return int(n)
}

// Generate draws today's demand over the given finished products. The count
// is drawn even when there is nothing to order so the stream stays aligned.
func (g *Generator) Generate(finished []*entities.Product) []Request {
	n := g.Count()
	if len(finished) == 0 {
		return nil
	}

	span := int(g.opts.MaxQuantity - g.opts.MinQuantity + 1)
	requests := make([]Request, 0, n)
	for i := 0; i < n; i++ {
		p := finished[g.rng.IntN(len(finished))]
		qty := g.opts.MinQuantity + entities.Quantity(g.rng.IntN(span))
		requests = append(requests, Request{ProductID: p.ID, Quantity: qty})
	}
	return requests
}
