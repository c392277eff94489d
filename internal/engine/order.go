package engine

import (
	"math/rand"
	"sort"

	"github.com/piwi3910/plannest/internal/model"
)

// OrderSearchConfig holds parameters for the part-order genetic search.
type OrderSearchConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
	Seed           int64
}

// DefaultOrderSearchConfig returns the default search parameters. The seed
// is fixed so two runs over the same input produce the same layout.
func DefaultOrderSearchConfig() OrderSearchConfig {
	return OrderSearchConfig{
		PopulationSize: 30,
		Generations:    40,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
		Seed:           1,
	}
}

// chromosome is one candidate part ordering with its evaluated fitness.
type chromosome struct {
	order   []int
	fitness float64
}

// orderSearch evolves part orderings, re-nesting each and keeping the layout
// with the best fitness: most candidates placed, then fewest sheets, then
// highest utilization.
type orderSearch struct {
	nester *Nester
	config OrderSearchConfig
	parts  []model.Part
	sizes  []model.PixelSize
	mat    string
	thick  float64
	rng    *rand.Rand
}

// OptimizeOrder searches part orderings for a better layout than the default
// area-descending pack. It returns the best result found; the plain NestParts
// result is the floor, never regressed below.
func (n *Nester) OptimizeOrder(parts []model.Part, sizes []model.PixelSize, material string, thickness float64, cfg OrderSearchConfig) (model.NestResult, error) {
	base, err := n.NestParts(parts, sizes, material, thickness)
	if err != nil {
		return model.NestResult{}, err
	}
	if len(parts) < 2 || len(sizes) == 0 {
		return base, nil
	}

	s := &orderSearch{
		nester: n,
		config: cfg,
		parts:  parts,
		sizes:  sizes,
		mat:    material,
		thick:  thickness,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
	best := s.run()

	if fitness(best) > fitness(base) {
		return best, nil
	}
	return base, nil
}

// fitness scores a result: placed count dominates, then sheet count, then
// overall utilization.
func fitness(r model.NestResult) float64 {
	return float64(r.Placed)*10000 - float64(r.SheetCount())*100 + r.TotalUtilization()
}

func (s *orderSearch) run() model.NestResult {
	population := make([]chromosome, s.config.PopulationSize)
	for i := range population {
		population[i] = chromosome{order: s.rng.Perm(len(s.parts))}
		population[i].fitness = s.evaluate(population[i])
	}

	for gen := 0; gen < s.config.Generations; gen++ {
		sort.SliceStable(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		next := make([]chromosome, 0, s.config.PopulationSize)
		elite := s.config.EliteCount
		if elite > len(population) {
			elite = len(population)
		}
		for i := 0; i < elite; i++ {
			next = append(next, population[i])
		}

		for len(next) < s.config.PopulationSize {
			p1 := s.tournament(population)
			p2 := s.tournament(population)
			child := s.crossover(p1, p2)
			s.mutate(&child)
			child.fitness = s.evaluate(child)
			next = append(next, child)
		}
		population = next
	}

	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
	return s.decode(population[0])
}

// evaluate nests the chromosome's ordering and scores the result.
func (s *orderSearch) evaluate(c chromosome) float64 {
	return fitness(s.decode(c))
}

// decode runs the nester over the chromosome's part ordering.
func (s *orderSearch) decode(c chromosome) model.NestResult {
	ordered := make([]model.Part, len(c.order))
	for i, idx := range c.order {
		ordered[i] = s.parts[idx]
	}
	result, err := s.nester.NestParts(ordered, s.sizes, s.mat, s.thick)
	if err != nil {
		return model.NestResult{}
	}
	return result
}

// tournament picks the fittest of a few random individuals.
func (s *orderSearch) tournament(population []chromosome) chromosome {
	best := population[s.rng.Intn(len(population))]
	for i := 1; i < s.config.TournamentSize; i++ {
		c := population[s.rng.Intn(len(population))]
		if c.fitness > best.fitness {
			best = c
		}
	}
	return best
}

// crossover performs order crossover (OX): a slice of the first parent is
// kept in place and the remaining positions are filled in the second
// parent's order.
func (s *orderSearch) crossover(p1, p2 chromosome) chromosome {
	n := len(p1.order)
	a, b := s.rng.Intn(n), s.rng.Intn(n)
	if a > b {
		a, b = b, a
	}

	child := make([]int, n)
	used := make(map[int]bool, n)
	for i := a; i <= b; i++ {
		child[i] = p1.order[i]
		used[p1.order[i]] = true
	}

	pos := 0
	for _, v := range p2.order {
		if used[v] {
			continue
		}
		for pos >= a && pos <= b {
			pos++
		}
		child[pos] = v
		pos++
	}
	return chromosome{order: child}
}

// mutate swaps random position pairs.
func (s *orderSearch) mutate(c *chromosome) {
	for i := range c.order {
		if s.rng.Float64() < s.config.MutationRate {
			j := s.rng.Intn(len(c.order))
			c.order[i], c.order[j] = c.order[j], c.order[i]
		}
	}
}
