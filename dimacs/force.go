// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package dimacs

import "sort"

// forceRounds bounds the number of center-of-gravity iterations. FORCE
// converges quickly in practice; a fixed bound keeps the heuristic linear in
// the formula size.
const forceRounds = 50

// Force computes a static variable order for the problem with the FORCE
// heuristic: variables are repeatedly pulled towards the center of gravity of
// the clauses mentioning them, which tends to place connected variables on
// neighbouring levels. The result lists the variable at each level, ready to
// be passed as an initial order to a BDD manager.
func Force(p *Problem) []int {
	varnum := p.Varnum
	pos := make([]float64, varnum)
	for v := range pos {
		pos[v] = float64(v)
	}
	// clause membership, with literals collapsed to variables
	clauses := make([][]int, 0, len(p.Clauses))
	for _, clause := range p.Clauses {
		vars := make([]int, 0, len(clause))
		seen := make(map[int]bool, len(clause))
		for _, lit := range clause {
			v := lit
			if v < 0 {
				v = -v
			}
			v--
			if !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
		}
		clauses = append(clauses, vars)
	}
	cog := make([]float64, len(clauses))
	sum := make([]float64, varnum)
	deg := make([]float64, varnum)
	for v := range deg {
		deg[v] = 0
	}
	for _, vars := range clauses {
		for _, v := range vars {
			deg[v]++
		}
	}
	for round := 0; round < forceRounds; round++ {
		for k, vars := range clauses {
			c := 0.0
			for _, v := range vars {
				c += pos[v]
			}
			cog[k] = c / float64(len(vars))
		}
		for v := range sum {
			sum[v] = 0
		}
		for k, vars := range clauses {
			for _, v := range vars {
				sum[v] += cog[k]
			}
		}
		for v := range pos {
			if deg[v] > 0 {
				pos[v] = sum[v] / deg[v]
			}
		}
		// re-rank variables by their new position
		order := rank(pos)
		for lvl, v := range order {
			pos[v] = float64(lvl)
		}
	}
	return rank(pos)
}

// rank sorts variables by position and returns the level-to-variable order.
func rank(pos []float64) []int {
	order := make([]int, len(pos))
	for v := range order {
		order[v] = v
	}
	sort.SliceStable(order, func(i, j int) bool {
		return pos[order[i]] < pos[order[j]]
	})
	return order
}
