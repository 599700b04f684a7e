// Package remote drives the target application through the HTTP bridge that
// runs inside it. Every TargetSystem call is one POST to
// {base}/v1/target/{method}.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"automarket/internal/domain"
	"automarket/internal/domain/service/sell"
	"automarket/internal/domain/value"
	"automarket/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type request struct {
	Index    int             `json:"index"`
	Surface  string          `json:"surface,omitempty"`
	Location *value.Location `json:"location,omitempty"`
	Labels   []string        `json:"labels,omitempty"`
	Price    int64           `json:"price,omitempty"`
	Quantity int             `json:"quantity,omitempty"`
	ItemID   uint32          `json:"item_id,omitempty"`
	IsHQ     bool            `json:"is_hq,omitempty"`
}

type response struct {
	OK       bool           `json:"ok"`
	Found    bool           `json:"found"`
	Index    int            `json:"index"`
	Count    int            `json:"count"`
	Price    int64          `json:"price"`
	Location value.Location `json:"location"`
}

type bridgeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Target struct {
	baseURL    string
	httpClient *http.Client
}

var _ sell.TargetSystem = (*Target)(nil)

func New(baseURL string, timeout time.Duration, httpClient *http.Client) *Target {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Target{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (t *Target) call(ctx context.Context, method string, in request) (response, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return response{}, fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v1/target/"+method, bytes.NewReader(b))
	if err != nil {
		return response{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("httpClient.Do: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var be bridgeError

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err := json.Unmarshal(body, &be); err != nil || be.Message == "" {
			be.Message = string(body)
		}

		return response{}, domain.NewError(errcodes.UnexpectedFault,
			fmt.Sprintf("bridge %s: %d %s %s", method, resp.StatusCode, be.Code, be.Message))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return response{}, fmt.Errorf("json.Decode: %w", err)
	}

	return out, nil
}

func (t *Target) OpenAgent(ctx context.Context, index int) (bool, error) {
	out, err := t.call(ctx, "open-agent", request{Index: index})
	return out.OK, err
}

func (t *Target) CloseAgent(ctx context.Context) error {
	_, err := t.call(ctx, "close-agent", request{})
	return err
}

func (t *Target) SurfaceReady(ctx context.Context, surface sell.Surface) (bool, error) {
	out, err := t.call(ctx, "surface-ready", request{Surface: surface.String()})
	return out.OK, err
}

func (t *Target) CloseSurface(ctx context.Context, surface sell.Surface) (bool, error) {
	out, err := t.call(ctx, "close-surface", request{Surface: surface.String()})
	return out.OK, err
}

func (t *Target) OpenInteractionSurface(ctx context.Context, location value.Location) (bool, error) {
	out, err := t.call(ctx, "open-interaction-surface", request{Location: &location})
	return out.OK, err
}

func (t *Target) FindActionByLabel(ctx context.Context, labels []string) (int, bool, error) {
	out, err := t.call(ctx, "find-action", request{Labels: labels})
	return out.Index, out.Found, err
}

func (t *Target) InvokeAction(ctx context.Context, index int) error {
	_, err := t.call(ctx, "invoke-action", request{Index: index})
	return err
}

func (t *Target) SubmitPriceAndQuantity(ctx context.Context, price int64, quantity int) error {
	_, err := t.call(ctx, "submit", request{Price: price, Quantity: quantity})
	return err
}

func (t *Target) CancelSellDialog(ctx context.Context) error {
	_, err := t.call(ctx, "cancel-sell-dialog", request{})
	return err
}

func (t *Target) ConfirmDialogIfPresent(ctx context.Context) (bool, error) {
	out, err := t.call(ctx, "confirm-dialog", request{})
	return out.OK, err
}

func (t *Target) QueryAgentCount(ctx context.Context) (int, error) {
	out, err := t.call(ctx, "agent-count", request{})
	return out.Count, err
}

func (t *Target) QueryAgentListingCount(ctx context.Context, index int) (int, error) {
	out, err := t.call(ctx, "agent-listing-count", request{Index: index})
	return out.Count, err
}

func (t *Target) QueryQuantityAt(ctx context.Context, location value.Location, itemID uint32) (int, error) {
	out, err := t.call(ctx, "quantity-at", request{Location: &location, ItemID: itemID})
	return out.Count, err
}

func (t *Target) FindNextLocationOfItem(ctx context.Context, itemID uint32, after value.Location) (value.Location, bool, error) {
	out, err := t.call(ctx, "find-next-location", request{Location: &after, ItemID: itemID})
	return out.Location, out.Found, err
}

func (t *Target) QueryLowestCompetingPrice(ctx context.Context, itemID uint32, isHQ bool) (int64, bool, error) {
	out, err := t.call(ctx, "lowest-competing-price", request{ItemID: itemID, IsHQ: isHQ})
	return out.Price, out.Found, err
}
