package backoff

import (
	"math/rand"
	"time"
)

// Backoff は指数バックオフの待機時間を生成します。
// Nextを呼ぶたびに待機時間は2倍になり、上限で頭打ちになります。
// 再接続の集中を避けるため、返り値にはジッターが入ります。
type Backoff struct {
	base time.Duration // 初期待機時間
	max  time.Duration // 待機時間の上限
	next time.Duration
}

// New はbaseから始まりmaxで頭打ちになるBackoffを生成します。
func New(base, max time.Duration) *Backoff {
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = base
	}
	return &Backoff{base: base, max: max, next: base}
}

// Next は次の待機時間を返し、内部状態を1段階進めます。
// 返り値は現在値の半分から現在値までの間に一様分布します。
func (b *Backoff) Next() time.Duration {
	d := b.next
	b.next *= 2
	if b.next > b.max {
		b.next = b.max
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}

// Reset は待機時間を初期値に戻します。接続に成功した直後に呼びます。
func (b *Backoff) Reset() {
	b.next = b.base
}
