package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/fotocheck/fotocheck/internal/rubric"
	"github.com/openai/openai-go"
)

const tokenScope = "https://ai.azure.com/.default"

// terminal run statuses per the agents API
var terminalStatuses = map[string]bool{
	"completed": true,
	"failed":    true,
	"cancelled": true,
	"expired":   true,
}

type azureGateway struct {
	config     *Config
	logger     *slog.Logger
	client     *http.Client
	credential azcore.TokenCredential
	images     *openai.Client

	tokenMu sync.Mutex
	token   azcore.AccessToken
}

// CreateAgent returns the configured agent id when one is set, otherwise
// creates a fresh evaluation agent carrying the rubric instructions.
func (g *azureGateway) CreateAgent(ctx context.Context) (string, error) {
	if g.config.AgentID != "" {
		return g.config.AgentID, nil
	}

	body := map[string]any{
		"model":        g.config.ModelDeployment,
		"name":         g.config.AgentName,
		"instructions": rubric.Instructions,
	}

	var agent struct {
		ID string `json:"id"`
	}
	if err := g.post(ctx, "/assistants", body, &agent); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAgent, err)
	}

	g.logger.Info("agent created", "agent_id", agent.ID, "name", g.config.AgentName)
	return agent.ID, nil
}

// UploadFile uploads image data for assistant use and returns the file id.
func (g *azureGateway) UploadFile(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("purpose", "assistants"); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	req, err := g.request(ctx, http.MethodPost, "/files", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var file struct {
		ID string `json:"id"`
	}
	if err := g.do(req, &file); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	return file.ID, nil
}

// CreateThreadMessage creates a thread holding a single user message that
// pairs the prompt text with the uploaded image, and returns the thread id.
func (g *azureGateway) CreateThreadMessage(ctx context.Context, fileID, prompt string) (string, error) {
	var thread struct {
		ID string `json:"id"`
	}
	if err := g.post(ctx, "/threads", map[string]any{}, &thread); err != nil {
		return "", fmt.Errorf("%w: %v", ErrThread, err)
	}

	message := map[string]any{
		"role": "user",
		"content": []map[string]any{
			{
				"type": "text",
				"text": prompt + rubric.PromptSuffix,
			},
			{
				"type": "image_file",
				"image_file": map[string]any{
					"file_id": fileID,
					"detail":  "high",
				},
			},
		},
	}

	if err := g.post(ctx, "/threads/"+thread.ID+"/messages", message, nil); err != nil {
		return "", fmt.Errorf("%w: %v", ErrThread, err)
	}

	return thread.ID, nil
}

// RunAndPoll starts a run on the thread and polls at the configured interval
// until the run reaches a terminal status or the run timeout elapses. A
// completed run resolves to the latest assistant message text.
func (g *azureGateway) RunAndPoll(ctx context.Context, threadID, agentID string) (*RunOutcome, error) {
	var run struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}

	body := map[string]any{"assistant_id": agentID}
	if err := g.post(ctx, "/threads/"+threadID+"/runs", body, &run); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRun, err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.RunTimeoutDuration())
	defer cancel()

	ticker := time.NewTicker(g.config.PollIntervalDuration())
	defer ticker.Stop()

	for !terminalStatuses[run.Status] {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: last status %s", ErrRunTimeout, run.Status)
		case <-ticker.C:
			if err := g.get(ctx, "/threads/"+threadID+"/runs/"+run.ID, &run); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRun, err)
			}
		}
	}

	if run.Status != "completed" {
		return nil, fmt.Errorf("%w: status %s", ErrRun, run.Status)
	}

	output, err := g.latestAssistantText(ctx, threadID)
	if err != nil {
		return nil, err
	}

	return &RunOutcome{Status: run.Status, Output: output}, nil
}

func (g *azureGateway) latestAssistantText(ctx context.Context, threadID string) (string, error) {
	var messages struct {
		Data []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text struct {
					Value string `json:"value"`
				} `json:"text"`
			} `json:"content"`
		} `json:"data"`
	}

	if err := g.get(ctx, "/threads/"+threadID+"/messages?order=desc", &messages); err != nil {
		return "", fmt.Errorf("%w: %v", ErrThread, err)
	}

	for _, message := range messages.Data {
		if message.Role != "assistant" {
			continue
		}
		for _, block := range message.Content {
			if block.Type == "text" && block.Text.Value != "" {
				return block.Text.Value, nil
			}
		}
	}

	return "", ErrNoOutput
}

func (g *azureGateway) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := g.request(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return g.do(req, out)
}

func (g *azureGateway) get(ctx context.Context, path string, out any) error {
	req, err := g.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return g.do(req, out)
}

func (g *azureGateway) request(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := g.config.Endpoint + path
	if strings.Contains(path, "?") {
		url += "&api-version=" + g.config.APIVersion
	} else {
		url += "?api-version=" + g.config.APIVersion
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return req, nil
}

func (g *azureGateway) do(req *http.Request, out any) error {
	res, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, res.StatusCode, detail)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (g *azureGateway) accessToken(ctx context.Context) (string, error) {
	g.tokenMu.Lock()
	defer g.tokenMu.Unlock()

	if g.token.Token != "" && time.Until(g.token.ExpiresOn) > 2*time.Minute {
		return g.token.Token, nil
	}

	token, err := g.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{tokenScope},
	})
	if err != nil {
		return "", fmt.Errorf("acquire token: %w", err)
	}

	g.token = token
	return token.Token, nil
}
