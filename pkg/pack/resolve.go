package pack

import "fmt"

// Resolve orders asset definitions so that every asset appears after all of
// its dependencies (Kahn's algorithm). Edge direction is dependency →
// dependent. Ties between simultaneously-ready assets break by declaration
// order; callers must not depend on any finer ordering.
//
// Returns an error for duplicate names or dependencies that do not resolve
// within the set, and a *CircularDependencyError naming the unresolved
// assets when at least one cycle exists.
//
// Resolve doubles as construction-time template validation: validating a
// definition set is resolving it and discarding the order.
func Resolve(assets []AssetDefinition) (GenerationOrder, error) {
	index := make(map[string]int, len(assets))
	for i, a := range assets {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := index[a.Name]; dup {
			return nil, fmt.Errorf("duplicate asset name %q", a.Name)
		}
		index[a.Name] = i
	}

	inDegree := make([]int, len(assets))
	dependents := make([][]int, len(assets))
	for i, a := range assets {
		for _, dep := range a.DependsOn {
			depIdx, ok := index[dep]
			if !ok {
				return nil, fmt.Errorf("asset %q depends on unknown asset %q", a.Name, dep)
			}
			inDegree[i]++
			dependents[depIdx] = append(dependents[depIdx], i)
		}
	}

	// FIFO queue seeded in declaration order keeps the tie-break stable.
	queue := make([]int, 0, len(assets))
	for i := range assets {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make(GenerationOrder, 0, len(assets))
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		order = append(order, assets[next].Name)
		for _, dependent := range dependents[next] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) < len(assets) {
		resolved := make(map[string]bool, len(order))
		for _, name := range order {
			resolved[name] = true
		}
		var unresolved []string
		for _, a := range assets {
			if !resolved[a.Name] {
				unresolved = append(unresolved, a.Name)
			}
		}
		return nil, &CircularDependencyError{Unresolved: unresolved}
	}

	return order, nil
}
