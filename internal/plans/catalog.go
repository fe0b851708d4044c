// Package plans содержит статический каталог тарифов доступа.
//
// Идентификаторы тарифов — фиксированные строки, кодирующие периодичность
// и ценовой уровень ("daily_1000", "monthly_1000"). Соответствие
// идентификатора длительности и цене задаётся каталогом, а не запросом.
package plans

import (
	"errors"
	"sort"
	"time"

	"github.com/magabrotheeeer/hotspot-billing/internal/models"
)

// ErrUnknownPlan возвращается, если идентификатор тарифа не найден в каталоге.
var ErrUnknownPlan = errors.New("unknown plan")

// Catalog — неизменяемый набор тарифов, загружаемый при старте.
type Catalog struct {
	plans map[string]models.Plan
}

// Default возвращает каталог с тарифами хотспота.
func Default() *Catalog {
	return New(
		models.Plan{ID: "daily_1000", Duration: 24 * time.Hour, Price: 1000, UptimeLimit: "1d"},
		models.Plan{ID: "monthly_1000", Duration: 30 * 24 * time.Hour, Price: 10000, UptimeLimit: "30d"},
	)
}

// New собирает каталог из переданных тарифов.
func New(list ...models.Plan) *Catalog {
	m := make(map[string]models.Plan, len(list))
	for _, p := range list {
		m[p.ID] = p
	}
	return &Catalog{plans: m}
}

// Resolve возвращает тариф по идентификатору или ErrUnknownPlan.
func (c *Catalog) Resolve(planID string) (models.Plan, error) {
	p, ok := c.plans[planID]
	if !ok {
		return models.Plan{}, ErrUnknownPlan
	}
	return p, nil
}

// All возвращает тарифы каталога, отсортированные по идентификатору.
func (c *Catalog) All() []models.Plan {
	result := make([]models.Plan, 0, len(c.plans))
	for _, p := range c.plans {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
