package extract

import (
	"errors"
	"strings"

	"replycast/pkg/message"
)

// FragmentType distinguishes plain text from hyperlinks in a link element.
type FragmentType string

const (
	FragmentText FragmentType = "text"
	FragmentLink FragmentType = "link"
)

// Fragment is one ordered piece of a link element. For links Value holds the
// display label and URL the target. Block is the index of the top-level node
// the fragment came from.
type Fragment struct {
	Type  FragmentType
	Value string
	URL   string
	Block int
}

type frame struct {
	node  any
	block int
}

// FragmentStream lazily walks a nested rich-text tree and yields text and link
// fragments in document order. It is finite and not restartable. The walk uses
// an explicit stack, so nesting depth is bounded only by the input size.
type FragmentStream struct {
	stack []frame
	err   error
	done  bool
}

// NewFragmentStream prepares a stream over raw. Nil or empty input yields an
// empty stream.
func NewFragmentStream(raw any) *FragmentStream {
	s := &FragmentStream{}

	switch node := raw.(type) {
	case nil:
	case []any:
		for i := len(node) - 1; i >= 0; i-- {
			s.stack = append(s.stack, frame{node: node[i], block: i})
		}
	case map[string]any:
		if len(node) > 0 {
			s.stack = append(s.stack, frame{node: node})
		}
	default:
		s.err = message.MalformedInput("link element must be a list or object, got %T", raw)
	}

	return s
}

// Next returns the next fragment. After the last fragment it returns an error
// matching message.ErrExhaustedSequence; traversal errors match
// message.ErrMalformedInput and end the stream.
func (s *FragmentStream) Next() (Fragment, error) {
	if s.err != nil {
		err := s.err
		s.err = nil
		s.done = true
		s.stack = nil
		return Fragment{}, err
	}

	for len(s.stack) > 0 {
		top := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		fragment, ok, err := s.visit(top)
		if err != nil {
			s.done = true
			s.stack = nil
			return Fragment{}, err
		}
		if ok {
			return fragment, nil
		}
	}

	s.done = true
	return Fragment{}, message.ExhaustedSequence("no more link fragments")
}

// Done reports whether the stream has been fully consumed.
func (s *FragmentStream) Done() bool {
	return s.done
}

// Collect drains the stream.
func (s *FragmentStream) Collect() ([]Fragment, error) {
	var fragments []Fragment
	for {
		fragment, err := s.Next()
		if err != nil {
			if errors.Is(err, message.ErrExhaustedSequence) {
				return fragments, nil
			}
			return nil, err
		}
		fragments = append(fragments, fragment)
	}
}

func (s *FragmentStream) visit(f frame) (Fragment, bool, error) {
	switch node := f.node.(type) {
	case nil:
		return Fragment{}, false, nil
	case string:
		if node == "" {
			return Fragment{}, false, nil
		}
		return Fragment{Type: FragmentText, Value: node, Block: f.block}, true, nil
	case []any:
		s.pushChildren(node, f.block)
		return Fragment{}, false, nil
	case map[string]any:
		return s.visitObject(node, f.block)
	default:
		return Fragment{}, false, message.MalformedInput("unexpected %T in link element", f.node)
	}
}

func (s *FragmentStream) visitObject(node map[string]any, block int) (Fragment, bool, error) {
	nodeType, err := optionalString(node, "type")
	if err != nil {
		return Fragment{}, false, err
	}

	if nodeType == string(message.KindLink) {
		url, err := optionalString(node, "href", "url")
		if err != nil {
			return Fragment{}, false, err
		}
		url = strings.TrimSpace(url)
		if url == "" {
			return Fragment{}, false, message.MalformedInput("link node is missing href")
		}

		label, err := collectText(node["children"])
		if err != nil {
			return Fragment{}, false, err
		}
		if strings.TrimSpace(label) == "" {
			label = url
		}

		return Fragment{Type: FragmentLink, Value: label, URL: url, Block: block}, true, nil
	}

	if children, ok := node["children"]; ok {
		list, isList := children.([]any)
		if !isList {
			return Fragment{}, false, message.MalformedInput("children must be a list, got %T", children)
		}
		s.pushChildren(list, block)
	}

	rawText, ok := node["text"]
	if !ok {
		return Fragment{}, false, nil
	}
	text, isString := rawText.(string)
	if !isString {
		return Fragment{}, false, message.MalformedInput("text must be a string, got %T", rawText)
	}
	if text == "" {
		return Fragment{}, false, nil
	}

	return Fragment{Type: FragmentText, Value: text, Block: block}, true, nil
}

func (s *FragmentStream) pushChildren(children []any, block int) {
	for i := len(children) - 1; i >= 0; i-- {
		s.stack = append(s.stack, frame{node: children[i], block: block})
	}
}
