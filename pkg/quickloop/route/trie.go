// Package route implements the path-segment trie that maps a request's
// path to a handler. Adapted from bolt's RouterLockFree (copy-on-write,
// atomic.Value-published tree, frozen after the server starts accepting
// connections) but simplified to this server's closed method set and
// single-handler-per-(path,method) model — no middleware chain, no
// wildcard matching beyond the reserved (but inert) variable-child kind.
package route

import (
	"strings"
	"sync/atomic"

	"github.com/nkaush-go/quickloop/pkg/quickloop/proto"
	"github.com/nkaush-go/quickloop/pkg/quickloop/request"
	"github.com/nkaush-go/quickloop/pkg/quickloop/response"
)

// Handler is the ABI every registered route and every canonical fallback
// implements: read the request, return a response. Handlers never write
// to the wire directly — the conn package owns all socket I/O — so a
// Handler can't accidentally violate the connection state machine.
type Handler func(req *request.Request) *response.Response

// childKind distinguishes a literal path segment from a reserved
// parameter segment. Parameter children are accepted during
// registration (a node whose component looks like "<name>") but are
// never consulted during lookup — constant matching always wins, and
// there is no fallback to a parameter sibling. This mirrors the
// original route.c, whose lookup path never even branches on the
// variable map it declares.
type childKind uint8

const (
	childConstant childKind = iota
	childParam
)

type node struct {
	component string
	kind      childKind
	children  map[string]*node
	handlers  map[proto.Method]Handler
}

func newNode(component string) *node {
	kind := childConstant
	if len(component) >= 2 && component[0] == '<' && component[len(component)-1] == '>' {
		component = component[1 : len(component)-1]
		kind = childParam
	}
	return &node{component: component, kind: kind, children: make(map[string]*node)}
}

func (n *node) clone() *node {
	c := &node{component: n.component, kind: n.kind, children: make(map[string]*node, len(n.children))}
	for k, v := range n.children {
		c.children[k] = v // children are immutable once published; share them
	}
	if n.handlers != nil {
		c.handlers = make(map[proto.Method]Handler, len(n.handlers))
		for m, h := range n.handlers {
			c.handlers[m] = h
		}
	}
	return c
}

// Trie is the route table. It is safe for concurrent reads at any time;
// writes (Register) are only legal before Freeze is called, matching the
// spec's "registration refuses to operate once the loop has started."
type Trie struct {
	root   atomic.Value // *node
	frozen atomic.Bool
}

// New returns an empty, unfrozen Trie.
func New() *Trie {
	t := &Trie{}
	t.root.Store(newNode(""))
	return t
}

// Freeze prevents any further Register calls. The event-loop driver
// calls this once, immediately before entering its accept/poll loop.
func (t *Trie) Freeze() {
	t.frozen.Store(true)
}

// Register adds handler for method at path. path must start with "/".
// Register panics if called after Freeze, on an unknown method, or with
// a nil handler — all three are programmer errors the original route.c
// also treats as fatal misuse (errx on NULL route/handler).
func (t *Trie) Register(method proto.Method, path string, handler Handler) {
	if t.frozen.Load() {
		panic("route: Register called after the trie was frozen")
	}
	if !method.Valid() {
		panic("route: cannot register a handler for an invalid method")
	}
	if handler == nil {
		panic("route: cannot register a nil handler")
	}
	if path == "" || path[0] != '/' {
		panic("route: path must start with '/'")
	}

	oldRoot := t.root.Load().(*node)
	newRoot := oldRoot.clone()

	segments := splitSegments(path)
	curr := newRoot
	for _, seg := range segments {
		child, ok := curr.children[seg]
		if !ok {
			child = newNode(seg)
		} else {
			child = child.clone()
		}
		curr.children[seg] = child
		curr = child
	}

	if curr.handlers == nil {
		curr.handlers = make(map[proto.Method]Handler)
	}
	curr.handlers[method] = handler

	t.root.Store(newRoot)
}

// Lookup resolves path to a handler for method. found is false if no
// node matches the path at all; if a node matches but has no handler
// for method, found is true and handler is nil — callers use this to
// distinguish 404 from 405.
func (t *Trie) Lookup(method proto.Method, path string) (handler Handler, found bool) {
	root := t.root.Load().(*node)
	curr := root
	for _, seg := range splitSegments(path) {
		child, ok := curr.children[seg]
		if !ok {
			return nil, false
		}
		curr = child
	}
	if curr.handlers == nil {
		return nil, true
	}
	h := curr.handlers[method]
	return h, true
}

func splitSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
