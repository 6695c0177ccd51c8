package route

import (
	"strings"

	"github.com/vango-dev/outlet/pkg/routepath"
)

type segmentKind uint8

const (
	segmentStatic segmentKind = iota
	segmentParam
	segmentSplat
)

// segment is one compiled piece of a relative route pattern.
type segment struct {
	kind      segmentKind
	literal   string // static segments
	paramName string // params and named splats
	paramType string // "string", "int", "uint", "uuid"
}

// pattern is a compiled relative route pattern.
type pattern struct {
	segments      []segment
	caseSensitive bool
}

func (p pattern) hasSplat() bool {
	n := len(p.segments)
	return n > 0 && p.segments[n-1].kind == segmentSplat
}

// compilePattern parses a relative pattern such as "users/:id:int/*rest".
func compilePattern(rel string, caseSensitive bool) (pattern, error) {
	p := pattern{caseSensitive: caseSensitive}
	raw := routepath.Split(rel)
	for i, seg := range raw {
		switch {
		case strings.HasPrefix(seg, "*"):
			if i != len(raw)-1 {
				return pattern{}, ErrSplatNotLast
			}
			name := seg[1:]
			if name != "" && !validParamName(name) {
				return pattern{}, ErrInvalidSegment
			}
			p.segments = append(p.segments, segment{kind: segmentSplat, paramName: name})
		case strings.Contains(seg, "*"):
			return pattern{}, ErrInvalidSegment
		case strings.HasPrefix(seg, ":"):
			name, typ := parseParamSegment(seg)
			if !validParamName(name) {
				return pattern{}, ErrInvalidSegment
			}
			p.segments = append(p.segments, segment{kind: segmentParam, paramName: name, paramType: typ})
		default:
			p.segments = append(p.segments, segment{kind: segmentStatic, literal: seg})
		}
	}
	return p, nil
}

// parseParamSegment extracts name and type from ":id" or ":id:int".
func parseParamSegment(seg string) (name, paramType string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, "string"
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// patternMatch is the result of matching one pattern against a prefix of
// the remaining path.
type patternMatch struct {
	params   Params
	consumed int  // raw segments consumed, splat included
	base     int  // raw segments consumed, splat excluded
	splat    bool // matched a splat
}

// match tests p against raw path segments. When end is set the pattern must
// account for every segment; otherwise it matches a segment-aligned prefix.
func (p pattern) match(raw []string, end bool) (patternMatch, bool) {
	m := patternMatch{params: Params{}}
	for i, seg := range p.segments {
		switch seg.kind {
		case segmentSplat:
			suffix, err := routepath.DecodeSuffix(raw[i:])
			if err != nil {
				return patternMatch{}, false
			}
			m.params[SplatParam] = suffix
			if seg.paramName != "" {
				m.params[seg.paramName] = suffix
			}
			m.consumed = len(raw)
			m.base = i
			m.splat = true
			return m, true

		case segmentParam:
			if i >= len(raw) || raw[i] == "" {
				return patternMatch{}, false
			}
			value, err := routepath.DecodeSegment(raw[i], false)
			if err != nil {
				return patternMatch{}, false
			}
			if ValidateParam(value, seg.paramType) != nil {
				return patternMatch{}, false
			}
			m.params[seg.paramName] = value

		case segmentStatic:
			if i >= len(raw) {
				return patternMatch{}, false
			}
			value, err := routepath.DecodeSegment(raw[i], true)
			if err != nil {
				return patternMatch{}, false
			}
			if p.caseSensitive {
				if value != seg.literal {
					return patternMatch{}, false
				}
			} else if !strings.EqualFold(value, seg.literal) {
				return patternMatch{}, false
			}
		}
	}

	n := len(p.segments)
	if end && len(raw) != n {
		return patternMatch{}, false
	}
	m.consumed = n
	m.base = n
	return m, true
}
