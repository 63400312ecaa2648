package equipment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ID は備品の UUID です。
type ID string

// NewID は新しい UUID を採番します。
func NewID() ID {
	return ID(uuid.NewString())
}

func ParseID(raw string) (ID, error) {
	u, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return ID(u.String()), nil
}

func (id ID) String() string { return string(id) }

var assetTagPattern = regexp.MustCompile(`^ASSET-(\d{4})-(\d{4})$`)

// MaxAssetSequence は 1 年あたりの資産タグ連番の上限です。
const MaxAssetSequence = 9999

// AssetTag は ASSET-YYYY-NNNN 形式の資産タグです。
type AssetTag string

func ParseAssetTag(raw string) (AssetTag, error) {
	value := strings.TrimSpace(raw)
	if !assetTagPattern.MatchString(value) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAssetTag, raw)
	}
	return AssetTag(value), nil
}

func NewAssetTag(year, sequence int) (AssetTag, error) {
	if year < 1000 || year > 9999 || sequence < 1 || sequence > MaxAssetSequence {
		return "", fmt.Errorf("%w: year=%d sequence=%d", ErrInvalidAssetTag, year, sequence)
	}
	return AssetTag(fmt.Sprintf("ASSET-%04d-%04d", year, sequence)), nil
}

func (t AssetTag) String() string { return string(t) }

const minSerialLength = 6

// SerialNumber はトリム済みで 6 文字以上のシリアル番号です。
type SerialNumber string

func ParseSerialNumber(raw string) (SerialNumber, error) {
	value := strings.TrimSpace(raw)
	if len(value) < minSerialLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidSerialNumber, raw)
	}
	return SerialNumber(value), nil
}

func (s SerialNumber) String() string { return string(s) }
