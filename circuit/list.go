package circuit

// list is a doubly-linked access-order list of Breakers: the Registry
// moves a breaker to the tail on every Get, so the head is always the
// least-recently-used endpoint, the candidate set idle eviction scans.
type list struct {
	first, last *Breaker
}

func (l *list) remove(from, to *Breaker) {
	if from == nil || l.first == nil {
		return
	}

	if from == l.first {
		l.first = to.next
	} else if from.prev != nil {
		from.prev.next = to.next
	}

	if to == l.last {
		l.last = from.prev
	} else if to.next != nil {
		to.next.prev = from.prev
	}

	from.prev = nil
	to.next = nil
}

func (l *list) append(from, to *Breaker) {
	if from == nil {
		return
	}

	if l.last == nil {
		l.first = from
		l.last = to
		return
	}

	l.last.next = from
	from.prev = l.last
	l.last = to
}

// appendLast marks b as the most recently used breaker, moving it to the
// tail if it's already in the list.
func (l *list) appendLast(b *Breaker) {
	l.remove(b, b)
	l.append(b, b)
}

// getMatchingHead returns the longest run of consecutive breakers at the
// head of the list (the least-recently-used end) that satisfy predicate.
func (l *list) getMatchingHead(predicate func(*Breaker) bool) (first, last *Breaker) {
	current := l.first
	for {
		if current == nil || !predicate(current) {
			return
		}

		if first == nil {
			first = current
		}

		last, current = current, current.next
	}
}

// dropHeadIf removes the longest run of idle breakers at the head of the
// list and returns them, so the Registry can drop them from its lookup
// table too.
func (l *list) dropHeadIf(predicate func(*Breaker) bool) (from, to *Breaker) {
	from, to = l.getMatchingHead(predicate)
	l.remove(from, to)
	return
}
