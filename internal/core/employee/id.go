package employee

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var idPattern = regexp.MustCompile(`^EMP-(\d{4})-(\d{4})$`)

// MaxSequence は 1 年あたりに採番できる最大連番です。
const MaxSequence = 9999

// ID は EMP-YYYY-NNNN 形式の社員番号です。
type ID string

// ParseID は文字列を検証して ID を返します。
func ParseID(raw string) (ID, error) {
	value := strings.TrimSpace(raw)
	if !idPattern.MatchString(value) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return ID(value), nil
}

// NewID は年と連番から ID を組み立てます。
func NewID(year, sequence int) (ID, error) {
	if year < 1000 || year > 9999 || sequence < 1 || sequence > MaxSequence {
		return "", fmt.Errorf("%w: year=%d sequence=%d", ErrInvalidID, year, sequence)
	}
	return ID(fmt.Sprintf("EMP-%04d-%04d", year, sequence)), nil
}

func (id ID) String() string { return string(id) }

// Year は ID に含まれる採番年を返します。
func (id ID) Year() int {
	m := idPattern.FindStringSubmatch(string(id))
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}

// Sequence は ID に含まれる連番を返します。
func (id ID) Sequence() int {
	m := idPattern.FindStringSubmatch(string(id))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[2])
	return n
}
