package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"counseling-ai-backend/internal/config"
)

// Client 結構用於與 OpenAI API 互動（Whisper 轉錄 + GPT 評分）。
type Client struct {
	cli             *openai.Client
	transcribeModel string
	chatModel       string
}

// NewClient 建立一個 OpenAI 客戶端實例。
func NewClient(cfg config.OpenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API Key 不得為空")
	}
	transcribeModel := cfg.TranscribeModel
	if transcribeModel == "" {
		transcribeModel = openai.Whisper1
		log.Printf("警告：[OpenAI Client] 未提供轉錄模型名稱，使用預設值: %s\n", transcribeModel)
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = openai.GPT4oMini
		log.Printf("警告：[OpenAI Client] 未提供評分模型名稱，使用預設值: %s\n", chatModel)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	log.Printf("資訊：[OpenAI Client] 初始化成功 (轉錄: %s, 評分: %s)。\n", transcribeModel, chatModel)
	return &Client{
		cli:             openai.NewClientWithConfig(clientConfig),
		transcribeModel: transcribeModel,
		chatModel:       chatModel,
	}, nil
}

// ChatModel 回傳評分使用的模型名稱，隨評估結果入庫。
func (c *Client) ChatModel() string {
	return c.chatModel
}

// Transcribe 以 Whisper 轉錄本地音訊/影片檔案，回傳逐字稿全文。
func (c *Client) Transcribe(ctx context.Context, mediaPath string) (string, error) {
	resp, err := c.cli.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcribeModel,
		FilePath: mediaPath,
	})
	if err != nil {
		return "", fmt.Errorf("Whisper 轉錄失敗 ('%s'): %w", mediaPath, err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("Whisper 轉錄回傳空結果 ('%s')", mediaPath)
	}
	log.Printf("資訊：[OpenAI Client] 轉錄完成，逐字稿長度 %d 字元。\n", utf8.RuneCountInString(text))
	return text, nil
}

// AnalyzeTranscript 以分析系統 Prompt 對一段逐字稿執行 GPT 評分，
// 回傳清理後的 JSON 內容。
func (c *Client) AnalyzeTranscript(ctx context.Context, systemPrompt, transcript string) (json.RawMessage, error) {
	return c.completeJSON(ctx, systemPrompt, transcript)
}

// MergeAnalyses 以合併系統 Prompt 將多段部分評分合併為單一結果。
func (c *Client) MergeAnalyses(ctx context.Context, systemPrompt string, partials []json.RawMessage) (json.RawMessage, error) {
	if len(partials) == 0 {
		return nil, fmt.Errorf("沒有可合併的部分評分")
	}
	if len(partials) == 1 {
		return partials[0], nil
	}
	parts := make([]string, 0, len(partials))
	for i, p := range partials {
		parts = append(parts, fmt.Sprintf("### 區段 %d\n%s", i+1, string(p)))
	}
	return c.completeJSON(ctx, systemPrompt, strings.Join(parts, "\n\n"))
}

func (c *Client) completeJSON(ctx context.Context, systemPrompt, userContent string) (json.RawMessage, error) {
	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	resp, err := c.cli.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("GPT 評分請求失敗: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("GPT 評分回傳空的選項列表")
	}

	cleaned := cleanJSONString(resp.Choices[0].Message.Content)
	if cleaned == "" {
		return nil, fmt.Errorf("GPT 評分回傳空的內容")
	}
	if !json.Valid([]byte(cleaned)) {
		log.Printf("錯誤：[OpenAI Client] 評分回應清理後仍非有效 JSON:\n%s\n", cleaned)
		return nil, fmt.Errorf("GPT 評分回應不是有效的 JSON")
	}
	return json.RawMessage(cleaned), nil
}

// cleanJSONString 清理從 LLM 收到的可能包含雜質的 JSON 字串。
func cleanJSONString(rawResponse string) string {
	cleaned := strings.TrimSpace(rawResponse)

	// 移除可能的 markdown 代碼塊標記
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	cleaned = strings.TrimSpace(cleaned)

	// 尋找最外層的 JSON 物件
	firstBrace := strings.Index(cleaned, "{")
	lastBrace := strings.LastIndex(cleaned, "}")
	if firstBrace != -1 && lastBrace > firstBrace {
		cleaned = cleaned[firstBrace : lastBrace+1]
	}

	// 處理 UTF-8 編碼問題
	if !utf8.ValidString(cleaned) {
		log.Println("警告：[OpenAI Client] 回應包含無效的 UTF-8 字元，嘗試替換...")
		cleaned = strings.ToValidUTF8(cleaned, "")
	}

	// 移除控制字元（保留換行與 tab）
	var sb strings.Builder
	for _, r := range cleaned {
		if (r >= 0 && r < 9) || (r > 10 && r < 13) || (r > 13 && r < 32) || r == 127 {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(strings.TrimPrefix(sb.String(), "\uFEFF"))
}
