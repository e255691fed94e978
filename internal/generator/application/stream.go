package application

import (
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
)

// streamIncrement est le second mot d'état PCG commun à tous les flux
const streamIncrement uint64 = 0x9e3779b97f4a7c15

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// RandomStream est le flux pseudo-aléatoire d'une génération.
// Il appartient à l'appel de génération et n'est pas partagé entre goroutines.
type RandomStream struct {
	r *rand.Rand
}

// NewRandomStream crée le flux séquentiel d'une seed
func NewRandomStream(seed uint64) *RandomStream {
	return &RandomStream{r: rand.New(rand.NewPCG(seed, streamIncrement))}
}

// DayStream crée le flux indépendant d'un jour, dérivé de (seed, date)
func DayStream(seed uint64, date time.Time) *RandomStream {
	dayNumber := uint64(date.Unix() / 86400)
	return &RandomStream{r: rand.New(rand.NewPCG(seed, streamIncrement^dayNumber))}
}

// Float64 tire un nombre uniforme dans [0, 1)
func (s *RandomStream) Float64() float64 {
	return s.r.Float64()
}

// Pick tire k indices distincts parmi [0, n) (Fisher-Yates partiel).
// Consomme exactement min(k, n) tirages.
func (s *RandomStream) Pick(n, k int) []int {
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + s.r.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// Jitter applique un bruit multiplicatif uniforme: v × (1 + u), u ∈ [-pct, +pct)
func (s *RandomStream) Jitter(v, pct decimal.Decimal) decimal.Decimal {
	u := decimal.NewFromFloat(s.r.Float64())
	delta := u.Mul(two).Mul(pct).Sub(pct)
	return v.Mul(one.Add(delta))
}
