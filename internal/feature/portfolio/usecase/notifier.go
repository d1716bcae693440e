package usecase

import (
	"sync"
	"time"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

// DefaultDebounce は状態通知のデバウンスウィンドウのデフォルト値です。
const DefaultDebounce = 100 * time.Millisecond

// StateNotifier はポートフォリオ状態の変更を購読者へ配信するハブです。
// ティックの嵐で通知が溢れないよう、配信はトレーリングエッジでデバウンス
// されます: ウィンドウ内に何度公開されても配信は最後の状態の1回だけで、
// バーストが終われば最終状態が必ず届きます。
type StateNotifier struct {
	window time.Duration

	mu      sync.Mutex
	seq     int
	subs    map[int]func(entity.PortfolioState)
	pending *entity.PortfolioState
	timer   *time.Timer
	closed  bool
}

// NewStateNotifier は指定ウィンドウのノーティファイアを生成します。
// window が 0 以下の場合は DefaultDebounce を使用します。
func NewStateNotifier(window time.Duration) *StateNotifier {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &StateNotifier{
		window: window,
		subs:   make(map[int]func(entity.PortfolioState)),
	}
}

// Subscribe は購読者を登録し、購読解除用の関数を返します。
// コールバックは配信ゴルーチン上で直列に呼び出されます。渡される状態は
// イミュータブルなスナップショットなので、そのまま保持して構いません。
func (n *StateNotifier) Subscribe(fn func(entity.PortfolioState)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	id := n.seq
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Publish は最新状態の配信を予約します。ウィンドウ内の連続した公開は
// 1回の配信にまとめられ、配信時点で最新の状態だけが届きます。
func (n *StateNotifier) Publish(state entity.PortfolioState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.pending = &state
	if n.timer == nil {
		n.timer = time.AfterFunc(n.window, n.flush)
	}
}

func (n *StateNotifier) flush() {
	n.mu.Lock()
	state := n.pending
	n.pending = nil
	n.timer = nil
	if state == nil || n.closed {
		n.mu.Unlock()
		return
	}
	fns := make([]func(entity.PortfolioState), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(*state)
	}
}

// Close は保留中の配信を破棄し、以後の公開を無視するようにします。
func (n *StateNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.pending = nil
}
