package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
)

// postJSON отправляет JSON и возвращает тело ответа. Для не-2xx ответов
// ошибка содержит сообщение провайдера из error.message, если оно есть.
func postJSON(ctx context.Context, client *http.Client, provider, endpoint string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: encode request", provider)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "%s: build request", provider)
	}
	request.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: send request", provider)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: read response", provider)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		message := gjson.GetBytes(raw, "error.message").String()
		if message == "" {
			message = strings.TrimSpace(string(raw))
		}
		return raw, eris.Errorf("%s api error (%d): %s", provider, response.StatusCode, message)
	}

	return raw, nil
}
