package recommend

import (
	"math"
	"mySmartMarket/domain"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
)

// RatingMatrix is the customer x product matrix of time-decayed ratings.
// Rows and columns are sorted by id; missing cells are zero.
type RatingMatrix struct {
	customers []uint
	products  []uint64
	rowIndex  map[uint]int
	colIndex  map[uint64]int
	values    *mat.Dense
}

// BuildRatingMatrix weights each rating by exp(-days/decayDays) and averages
// the weights of repeated purchases of the same product. It returns nil when
// there is nothing rated.
func BuildRatingMatrix(purchases []domain.PurchaseDetail, now time.Time, decayDays float64) *RatingMatrix {
	type cell struct {
		customer uint
		product  uint64
	}
	sums := make(map[cell]float64)
	counts := make(map[cell]int)
	customers := make(map[uint]struct{})
	products := make(map[uint64]struct{})

	for _, p := range purchases {
		if p.Rating <= 0 {
			continue
		}
		days := math.Trunc(now.Sub(p.PurchaseDate).Hours() / 24)
		c := cell{customer: p.CustomerID, product: p.ProductID}
		sums[c] += float64(p.Rating) * math.Exp(-days/decayDays)
		counts[c]++
		customers[p.CustomerID] = struct{}{}
		products[p.ProductID] = struct{}{}
	}
	if len(sums) == 0 {
		return nil
	}

	m := &RatingMatrix{
		rowIndex: make(map[uint]int, len(customers)),
		colIndex: make(map[uint64]int, len(products)),
	}
	for id := range customers {
		m.customers = append(m.customers, id)
	}
	for id := range products {
		m.products = append(m.products, id)
	}
	sort.Slice(m.customers, func(i, j int) bool { return m.customers[i] < m.customers[j] })
	sort.Slice(m.products, func(i, j int) bool { return m.products[i] < m.products[j] })
	for i, id := range m.customers {
		m.rowIndex[id] = i
	}
	for j, id := range m.products {
		m.colIndex[id] = j
	}

	m.values = mat.NewDense(len(m.customers), len(m.products), nil)
	for c, sum := range sums {
		m.values.Set(m.rowIndex[c.customer], m.colIndex[c.product], sum/float64(counts[c]))
	}
	return m
}

func (m *RatingMatrix) Dims() (rows, cols int) {
	return m.values.Dims()
}

func (m *RatingMatrix) Row(customerID uint) (int, bool) {
	i, ok := m.rowIndex[customerID]
	return i, ok
}

func (m *RatingMatrix) At(customerID uint, productID uint64) float64 {
	i, ok := m.rowIndex[customerID]
	if !ok {
		return 0
	}
	j, ok := m.colIndex[productID]
	if !ok {
		return 0
	}
	return m.values.At(i, j)
}

// cosine returns the cosine similarity of rows a and b, 0 for a zero row.
func (m *RatingMatrix) cosine(a, b int) float64 {
	ra := m.values.RowView(a)
	rb := m.values.RowView(b)
	na, nb := mat.Norm(ra, 2), mat.Norm(rb, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return mat.Dot(ra, rb) / (na * nb)
}
