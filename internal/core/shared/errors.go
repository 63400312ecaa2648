package shared

import "errors"

var (
	// ErrNotFound は永続化層に対象が存在しないことを表します。各ドメインの NotFound はこれをラップします。
	ErrNotFound = errors.New("not found")
	// ErrConflict は同時更新による書き込み競合です。呼び出し側はユースケース全体を再実行します。
	ErrConflict = errors.New("concurrent modification conflict")
)

// InvariantError は入力値や前提条件の不正による違反です。
type InvariantError struct {
	Rule    string
	Message string
}

func (e *InvariantError) Error() string {
	return e.Message
}

// RuleConflictError は集約の状態に依存するビジネスルール違反です。
type RuleConflictError struct {
	Rule    string
	Message string
}

func (e *RuleConflictError) Error() string {
	return e.Message
}

// NewInvariant は InvariantError を生成します。
func NewInvariant(rule, message string) *InvariantError {
	return &InvariantError{Rule: rule, Message: message}
}

// NewConflict は RuleConflictError を生成します。
func NewConflict(rule, message string) *RuleConflictError {
	return &RuleConflictError{Rule: rule, Message: message}
}

// IsInvariant は err が InvariantError を含むか判定します。
func IsInvariant(err error) bool {
	var target *InvariantError
	return errors.As(err, &target)
}

// IsRuleConflict は err が RuleConflictError を含むか判定します。
func IsRuleConflict(err error) bool {
	var target *RuleConflictError
	return errors.As(err, &target)
}

// RuleOf は err に含まれる違反ルール名を返します。該当しない場合は空文字です。
func RuleOf(err error) string {
	var inv *InvariantError
	if errors.As(err, &inv) {
		return inv.Rule
	}
	var conflict *RuleConflictError
	if errors.As(err, &conflict) {
		return conflict.Rule
	}
	return ""
}
