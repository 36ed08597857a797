// Package kanban keeps board cards ordered. Within a lane the order values of
// the cards run 0..n-1 without gaps, and every referenced entity has exactly
// one card across all lanes.
package kanban

import (
	"errors"
	"fmt"
	"slices"
)

var ErrCardNotFound = errors.New("card not found")

// Card is a board entry pointing at one entity.
type Card interface {
	EntityID() string
	Ref() string
	Lane() string
	Position() int
}

type CardPtr[T any] interface {
	*T
	Card
	Place(lane string, order int)
}

// Placement says which lane an entity belongs in.
type Placement struct {
	Ref  string
	Lane string
}

// Column returns the cards of lane sorted by order.
func Column[T Card](cards []T, lane string) []T {
	result := make([]T, 0)
	for _, c := range cards {
		if c.Lane() == lane {
			result = append(result, c)
		}
	}
	slices.SortStableFunc(result, func(a, b T) int { return a.Position() - b.Position() })
	return result
}

// Find returns the index of the card referencing ref, or -1.
func Find[T any, P CardPtr[T]](cards []T, ref string) int {
	for i := range cards {
		if P(&cards[i]).Ref() == ref {
			return i
		}
	}
	return -1
}

// Move puts the card referencing ref at the end of lane and closes the gap it
// left behind. Moving a card to its own lane is a no-op.
func Move[T any, P CardPtr[T]](cards []T, ref, lane string) ([]T, error) {
	i := Find[T, P](cards, ref)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, ref)
	}
	result := slices.Clone(cards)
	from := P(&result[i])
	if from.Lane() == lane {
		return result, nil
	}
	source, order := from.Lane(), from.Position()
	from.Place(lane, nextOrder[T, P](result, lane))
	shift[T, P](result, source, order)
	return result, nil
}

// Append adds card at the end of its lane.
func Append[T any, P CardPtr[T]](cards []T, card T) []T {
	p := P(&card)
	p.Place(p.Lane(), nextOrder[T, P](cards, p.Lane()))
	return append(slices.Clone(cards), card)
}

func nextOrder[T any, P CardPtr[T]](cards []T, lane string) int {
	next := 0
	for i := range cards {
		c := P(&cards[i])
		if c.Lane() == lane && c.Position() >= next {
			next = c.Position() + 1
		}
	}
	return next
}

func shift[T any, P CardPtr[T]](cards []T, lane string, above int) {
	for i := range cards {
		c := P(&cards[i])
		if c.Lane() == lane && c.Position() > above {
			c.Place(lane, c.Position()-1)
		}
	}
}

// Sync makes cards agree with want. Cards already in the right lane keep
// their relative order; cards whose lane changed go to the end of their new
// lane, followed by cards created for entities that had none. Cards for
// entities missing from want are dropped, as are duplicate cards. The result
// is sorted by lane, in the order lanes are listed, and then by order.
func Sync[T any, P CardPtr[T]](cards []T, lanes []string, want []Placement, newCard func(ref, lane string) T) []T {
	target := make(map[string]string, len(want))
	for _, w := range want {
		target[w.Ref] = w.Lane
	}

	ordered := sorted[T, P](cards, lanes)
	seen := make(map[string]struct{}, len(ordered))
	staying := make([]T, 0, len(ordered))
	moved := make([]T, 0)
	for _, card := range ordered {
		c := P(&card)
		lane, ok := target[c.Ref()]
		if !ok {
			continue
		}
		if _, dup := seen[c.Ref()]; dup {
			continue
		}
		seen[c.Ref()] = struct{}{}
		if c.Lane() == lane {
			staying = append(staying, card)
			continue
		}
		c.Place(lane, 0)
		moved = append(moved, card)
	}

	result := append(staying, moved...)
	for _, w := range want {
		if _, ok := seen[w.Ref]; ok {
			continue
		}
		seen[w.Ref] = struct{}{}
		result = append(result, newCard(w.Ref, w.Lane))
	}

	next := make(map[string]int, len(lanes))
	for i := range result {
		c := P(&result[i])
		c.Place(c.Lane(), next[c.Lane()])
		next[c.Lane()]++
	}
	return sorted[T, P](result, lanes)
}

func sorted[T any, P CardPtr[T]](cards []T, lanes []string) []T {
	rank := func(lane string) int {
		if i := slices.Index(lanes, lane); i >= 0 {
			return i
		}
		return len(lanes)
	}
	result := slices.Clone(cards)
	slices.SortStableFunc(result, func(a, b T) int {
		pa, pb := P(&a), P(&b)
		if d := rank(pa.Lane()) - rank(pb.Lane()); d != 0 {
			return d
		}
		return pa.Position() - pb.Position()
	})
	return result
}

// Validate checks that orders are contiguous from zero within every lane and
// that no entity has more than one card.
func Validate[T Card](cards []T) error {
	refs := make(map[string]struct{}, len(cards))
	lanes := make(map[string][]int)
	for _, c := range cards {
		if _, dup := refs[c.Ref()]; dup {
			return fmt.Errorf("%s has more than one card", c.Ref())
		}
		refs[c.Ref()] = struct{}{}
		lanes[c.Lane()] = append(lanes[c.Lane()], c.Position())
	}
	for lane, orders := range lanes {
		slices.Sort(orders)
		for i, order := range orders {
			if order != i {
				return fmt.Errorf("lane %s: order %d at position %d", lane, order, i)
			}
		}
	}
	return nil
}
