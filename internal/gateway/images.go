package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/openai/openai-go"
)

// EditImage submits the photo and prompt to the image edit deployment and
// returns the corrected image bytes. The service answers with base64 payloads
// or a download URL depending on the deployment; both are handled.
func (g *azureGateway) EditImage(ctx context.Context, image []byte, filename, prompt, size string) ([]byte, error) {
	res, err := g.images.Images.Edit(ctx, openai.ImageEditParams{
		Image: openai.ImageEditParamsImageUnion{
			OfFile: openai.File(bytes.NewReader(image), filename, contentType(filename)),
		},
		Prompt: prompt,
		Model:  openai.ImageModel(g.config.ImageDeployment),
		N:      openai.Int(1),
		Size:   openai.ImageEditParamsSize(size),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEdit, err)
	}

	if len(res.Data) == 0 {
		return nil, fmt.Errorf("%w: response contained no images", ErrEdit)
	}

	first := res.Data[0]
	if first.B64JSON != "" {
		decoded, err := base64.StdEncoding.DecodeString(first.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("%w: decode payload: %v", ErrEdit, err)
		}
		return decoded, nil
	}

	if first.URL != "" {
		return g.fetchImage(ctx, first.URL)
	}

	return nil, fmt.Errorf("%w: response contained neither payload nor url", ErrEdit)
}

func (g *azureGateway) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEdit, err)
	}

	res, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEdit, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download status %d", ErrEdit, res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEdit, err)
	}
	return data, nil
}

func contentType(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "image/png"
}
