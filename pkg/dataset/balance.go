package dataset

import "math/rand"

// Balance resamples examples towards an equal share per category.
//
// Every category first gets floor(target/categories) items sampled uniformly
// without replacement, or all of its items when it has fewer. Remaining slots
// are then topped up one item per category per round, visiting categories
// with unused items in random order, until target is reached or nothing is
// left. No example is selected twice. A target of zero or less means the
// current size. A nil rng uses a fixed seed.
//
// The top-up is round-robin rather than a uniform draw over the leftover
// pool, so every category's share stays within one item of
// target/categories whenever its supply allows.
func Balance(examples []TrainingExample, target int, rng *rand.Rand) []TrainingExample {
	if len(examples) == 0 {
		return []TrainingExample{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if target <= 0 {
		target = len(examples)
	}

	order, groups := groupByCategory(examples)
	quota := target / len(order)

	out := make([]TrainingExample, 0, min(target, len(examples)))
	spare := make(map[string][]int, len(order))
	for _, category := range order {
		idx := shuffled(groups[category], rng)
		take := min(quota, len(idx))
		for _, i := range idx[:take] {
			out = append(out, examples[i])
		}
		spare[category] = idx[take:]
	}

	for len(out) < target {
		open := make([]string, 0, len(order))
		for _, category := range order {
			if len(spare[category]) > 0 {
				open = append(open, category)
			}
		}
		if len(open) == 0 {
			break
		}
		rng.Shuffle(len(open), func(i, j int) { open[i], open[j] = open[j], open[i] })

		for _, category := range open {
			if len(out) == target {
				break
			}
			out = append(out, examples[spare[category][0]])
			spare[category] = spare[category][1:]
		}
	}

	return out
}

// groupByCategory returns categories in order of first appearance and the
// indexes of their examples.
func groupByCategory(examples []TrainingExample) ([]string, map[string][]int) {
	var order []string
	groups := make(map[string][]int)
	for i, ex := range examples {
		if _, ok := groups[ex.Category]; !ok {
			order = append(order, ex.Category)
		}
		groups[ex.Category] = append(groups[ex.Category], i)
	}
	return order, groups
}

func shuffled(idx []int, rng *rand.Rand) []int {
	out := make([]int, len(idx))
	copy(out, idx)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
