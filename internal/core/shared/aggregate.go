package shared

// AggregateRoot は集約に埋め込んで使うイベント記録機能です。
// バッファは集約インスタンスごとに保持され、共有されません。
type AggregateRoot struct {
	pending []Event
}

// Record はイベントを保留バッファに追加します。
func (a *AggregateRoot) Record(event Event) {
	a.pending = append(a.pending, event)
}

// PendingEvents は未解放のイベントのコピーを返します。
func (a *AggregateRoot) PendingEvents() []Event {
	out := make([]Event, len(a.pending))
	copy(out, a.pending)
	return out
}

// ReleaseEvents は記録済みイベントを記録順に返し、バッファを空にします。
func (a *AggregateRoot) ReleaseEvents() []Event {
	released := a.pending
	a.pending = nil
	return released
}

// EventSource はイベントを解放できる集約を表します。
type EventSource interface {
	ReleaseEvents() []Event
}

// Identifiable は文字列 ID を持つ集約を表します。
type Identifiable interface {
	ID() string
}

// Aggregate は全集約が満たす能力の組み合わせです。
type Aggregate interface {
	Identifiable
	EventSource
}
