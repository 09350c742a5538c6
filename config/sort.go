package config

import "strings"

// Sort is the listing order requested from reddit.
type Sort string

const (
	SortHot           Sort = "hot"
	SortNew           Sort = "new"
	SortRising        Sort = "rising"
	SortControversial Sort = "controversial"
	SortTop           Sort = "top"
)

// ParseSort never fails, anything unknown is treated as "new".
func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortHot:
		return SortHot
	case SortRising:
		return SortRising
	case SortControversial:
		return SortControversial
	case SortTop:
		return SortTop
	default:
		return SortNew
	}
}

func (s Sort) String() string {
	return string(ParseSort(string(s)))
}

func (s Sort) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Sort) UnmarshalText(b []byte) error {
	*s = ParseSort(string(b))
	return nil
}
