package container

import "sync"

// Node is an element of a LinkedList.
type Node[T any] struct {
	Value      T
	prev, next *Node[T]
	list       *LinkedList[T]
}

// LinkedList is a doubly-linked list safe for concurrent use.
type LinkedList[T any] struct {
	mu         sync.Mutex
	head, tail *Node[T]
	length     int
}

// NewLinkedList creates an empty list.
func NewLinkedList[T any]() *LinkedList[T] {
	return &LinkedList[T]{}
}

// PushBack appends v and returns its node.
func (l *LinkedList[T]) PushBack(v T) *Node[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := &Node[T]{Value: v, list: l, prev: l.tail}
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.length++
	return n
}

// Remove unlinks n. It reports false when n does not belong to the list.
func (l *LinkedList[T]) Remove(n *Node[T]) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n == nil || n.list != l {
		return false
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next, n.list = nil, nil, nil
	l.length--
	return true
}

// Find returns the first node whose value satisfies pred.
func (l *LinkedList[T]) Find(pred func(T) bool) (*Node[T], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for n := l.head; n != nil; n = n.next {
		if pred(n.Value) {
			return n, true
		}
	}
	return nil, false
}

// Each calls fn for every value from front to back until fn returns false.
// fn must not modify the list.
func (l *LinkedList[T]) Each(fn func(T) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for n := l.head; n != nil; n = n.next {
		if !fn(n.Value) {
			return
		}
	}
}

// Len returns the number of elements.
func (l *LinkedList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.length
}

// Values returns the elements front to back.
func (l *LinkedList[T]) Values() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, 0, l.length)
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.Value)
	}
	return out
}
