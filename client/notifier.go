package client

import (
	"sync"
	"time"
)

// DefaultNotificationTTL 通知自动消失的时间
const DefaultNotificationTTL = 3 * time.Second

// Notifier 同一时间只显示一条通知，新通知会替换旧通知并重新计时
type Notifier struct {
	mu       sync.Mutex
	ttl      time.Duration
	message  string
	seq      uint64
	timer    *time.Timer
	onChange func(string)
}

// NewNotifier onChange 可为 nil，每次通知出现或消失时调用
func NewNotifier(ttl time.Duration, onChange func(string)) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &Notifier{ttl: ttl, onChange: onChange}
}

func (n *Notifier) Show(message string) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.message = message
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(seq) })
	n.mu.Unlock()
	n.changed(message)
}

// expire 只清除仍是同一条的通知
func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	if n.seq != seq {
		n.mu.Unlock()
		return
	}
	n.message = ""
	n.timer = nil
	n.mu.Unlock()
	n.changed("")
}

func (n *Notifier) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message
}

// Close 取消尚未触发的计时器
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.seq++
}

func (n *Notifier) changed(message string) {
	if n.onChange != nil {
		n.onChange(message)
	}
}
