package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
)

// AnswerCache keeps finished answers keyed by document, provider and
// question, so a repeated question skips retrieval and generation entirely.
type AnswerCache struct {
	client    *redisv9.Client
	answerTTL time.Duration
}

func NewAnswerCache(client *redisv9.Client, answerTTL time.Duration) *AnswerCache {
	if answerTTL <= 0 {
		answerTTL = 10 * time.Minute
	}
	return &AnswerCache{
		client:    client,
		answerTTL: answerTTL,
	}
}

func (c *AnswerCache) Get(ctx context.Context, pdfID uint, provider, question string) (*model.ChatAnswer, bool, error) {
	key := c.answerKey(pdfID, provider, question)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get answer failed: %w", err)
	}

	var answer model.ChatAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached answer failed: %w", err)
	}
	return &answer, true, nil
}

func (c *AnswerCache) Set(ctx context.Context, pdfID uint, provider, question string, answer *model.ChatAnswer) error {
	key := c.answerKey(pdfID, provider, question)
	payload, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal answer cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.answerTTL).Err(); err != nil {
		return fmt.Errorf("redis set answer failed: %w", err)
	}
	return nil
}

// DeleteByPDF drops every cached answer for one document, called when the
// document is deleted or reprocessed.
func (c *AnswerCache) DeleteByPDF(ctx context.Context, pdfID uint) error {
	pattern := fmt.Sprintf("chat:answer:%d:*", pdfID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete answer failed: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan answers failed: %w", err)
	}
	return nil
}

func (c *AnswerCache) answerKey(pdfID uint, provider, question string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(strings.ToLower(question))))
	return fmt.Sprintf("chat:answer:%d:%s:%s", pdfID, provider, hex.EncodeToString(sum[:]))
}
