// Package plan fetches a remote test plan and translates it into cases.
package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/programme-lv/kernval/api"
	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/catalog"
)

var ErrPlanUnavailable = errors.New("test plan unavailable")

const maxBodyBytes = 16 << 20

type Source struct {
	Endpoint string
	Client   *http.Client
	Catalog  *catalog.Catalog
	// DType is used for entries that do not name one.
	DType  internal.DType
	Logger *slog.Logger
}

func NewSource(endpoint string, timeout time.Duration, cat *catalog.Catalog, dtype internal.DType, logger *slog.Logger) *Source {
	return &Source{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
		Catalog:  cat,
		DType:    dtype,
		Logger:   logger,
	}
}

// Fetch issues one GET for planID and returns the planned cases in plan
// order. An empty planID returns no cases and no error. Every transport or
// protocol failure wraps ErrPlanUnavailable; entries that cannot be
// translated are skipped with a warning.
func (s *Source) Fetch(ctx context.Context, planID string) ([]internal.TestCase, error) {
	if planID == "" {
		return nil, nil
	}
	body, err := s.get(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPlanUnavailable, err)
	}

	var resp api.PlanResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %w", ErrPlanUnavailable, err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "success=false"
		}
		return nil, fmt.Errorf("%w: plan %s: %s", ErrPlanUnavailable, planID, msg)
	}

	return s.translate(resp.Result.Cases), nil
}

func (s *Source) get(ctx context.Context, planID string) ([]byte, error) {
	u, err := url.Parse(s.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("bad endpoint %q: %w", s.Endpoint, err)
	}
	q := u.Query()
	q.Set("planId", planID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("plan service returned %s", res.Status)
	}
	return body, nil
}

func (s *Source) translate(entries []api.PlanCase) []internal.TestCase {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cases := make([]internal.TestCase, 0, len(entries))
	ids := mapset.NewThreadUnsafeSet[string]()
	for i, e := range entries {
		ref, _ := scalar(e.ID)
		tc, err := s.toCase(e)
		if err != nil {
			logger.Warn("skipping plan entry", "index", i, "plan_ref", ref, "err", err)
			continue
		}
		tc.PlanRef = ref
		if !ids.Add(tc.ID) {
			logger.Warn("dropping duplicate plan entry", "index", i, "case", tc.ID)
			continue
		}
		cases = append(cases, tc)
	}
	return cases
}

func (s *Source) toCase(e api.PlanCase) (internal.TestCase, error) {
	name, err := scalar(e.Conditions[api.CondOperator])
	if err != nil {
		return internal.TestCase{}, fmt.Errorf("operator: %w", err)
	}
	if name == "" {
		return internal.TestCase{}, errors.New("no operator")
	}
	op, err := s.Catalog.Lookup(name)
	if err != nil {
		return internal.TestCase{}, err
	}

	variant, err := scalar(e.Conditions[api.CondVariant])
	if err != nil {
		return internal.TestCase{}, fmt.Errorf("variant: %w", err)
	}
	if !op.HasVariant(variant) {
		return internal.TestCase{}, fmt.Errorf("operator %s has no variant %q", op.Name, variant)
	}

	vlenStr, err := scalar(e.Conditions[api.CondVLen])
	if err != nil {
		return internal.TestCase{}, fmt.Errorf("vlen: %w", err)
	}
	vlen, err := internal.ParseVLen(vlenStr)
	if err != nil {
		return internal.TestCase{}, err
	}
	if vlen.IsSet() && !op.VLenAxis {
		return internal.TestCase{}, fmt.Errorf("operator %s has no vlen axis", op.Name)
	}

	dtype := s.DType
	dtypeStr, err := scalar(e.Conditions[api.CondDType])
	if err != nil {
		return internal.TestCase{}, fmt.Errorf("dtype: %w", err)
	}
	if dtypeStr != "" {
		if dtype, err = internal.ParseDType(dtypeStr); err != nil {
			return internal.TestCase{}, err
		}
	}
	if !op.SupportsDType(dtype) {
		return internal.TestCase{}, fmt.Errorf("operator %s does not support dtype %s", op.Name, dtype)
	}

	return internal.NewTestCase(op.Name, dtype, vlen, variant), nil
}

// scalar reads a JSON string, number or single-element list of either as a
// string. Absent and null values are "".
func scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return "", err
		}
		switch len(list) {
		case 0:
			return "", nil
		case 1:
			if len(bytes.TrimSpace(list[0])) > 0 && bytes.TrimSpace(list[0])[0] == '[' {
				return "", errors.New("nested list")
			}
			return scalar(list[0])
		}
		return "", fmt.Errorf("expected one value, got %d", len(list))
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", fmt.Errorf("unsupported value %s", raw)
		}
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10), nil
		}
		return n.String(), nil
	}
}
