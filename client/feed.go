package client

import (
	"context"
	"fmt"
	"strings"

	"go-city/dto"
	"go-city/entities"

	"github.com/gorilla/websocket"
)

// Watch 连接 /ws，把每条状态推送交给 fn，直到 ctx 结束或连接断开
func (c *Client) Watch(ctx context.Context, fn func(entities.GameState)) error {
	url := feedURL(c.baseURL)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("连接 %s 失败: %w", url, err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var msg dto.FeedMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("读取状态推送失败: %w", err)
		}
		if msg.Type != dto.MessageTypeState {
			continue
		}
		fn(msg.Payload)
	}
}

func feedURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://") + "/ws"
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://") + "/ws"
	default:
		return baseURL + "/ws"
	}
}
