package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api-v2.mindee.net"

// Inference is the normalized output of one extraction call: the structured
// fields that survived shape probing, plus the concatenated page text used
// by the registration-number fallback scan.
type Inference struct {
	Fields   map[string]string
	PageText string
}

// Client submits a document image to the extraction service.
type Client interface {
	Extract(ctx context.Context, image []byte) (*Inference, error)
}

// MindeeClient talks to the Mindee V2 inference API: enqueue the document,
// poll the job until it is processed, then fetch the inference result.
type MindeeClient struct {
	apiKey  string
	modelID string
	baseURL string
	client  *http.Client

	pollInterval time.Duration
	maxPolls     int
}

// NewMindeeClient creates a client for the given API key and model.
func NewMindeeClient(apiKey, modelID string, timeout time.Duration) *MindeeClient {
	return &MindeeClient{
		apiKey:       apiKey,
		modelID:      modelID,
		baseURL:      defaultBaseURL,
		client:       &http.Client{Timeout: timeout},
		pollInterval: 2 * time.Second,
		maxPolls:     30,
	}
}

// Mindee V2 API request/response types.
type mindeeJob struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	PollingURL string `json:"polling_url"`
	ResultURL  string `json:"result_url"`
	Error      *struct {
		Detail string `json:"detail"`
	} `json:"error"`
}

type mindeeJobResponse struct {
	Job mindeeJob `json:"job"`
}

// fieldValue tolerates non-string values (years arrive as numbers).
type fieldValue struct {
	Value any `json:"value"`
}

func (f fieldValue) text() string {
	switch v := f.Value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// inferenceEnvelope covers the response shapes the service has returned
// over time. Callers must probe them in priority order.
type inferenceEnvelope struct {
	Inference struct {
		Result struct {
			Fields map[string]fieldValue `json:"fields"`
		} `json:"result"`
	} `json:"inference"`
	Document struct {
		Inference struct {
			Prediction struct {
				Fields map[string]fieldValue `json:"fields"`
			} `json:"prediction"`
			Pages []struct {
				Prediction struct {
					Fields map[string]fieldValue `json:"fields"`
				} `json:"prediction"`
				Inference struct {
					Text string `json:"text"`
				} `json:"inference"`
			} `json:"pages"`
		} `json:"inference"`
	} `json:"document"`
}

// normalize flattens the envelope: the first non-empty field shape wins,
// and all page text is joined for the fallback scan.
func (e *inferenceEnvelope) normalize() *Inference {
	shapes := []map[string]fieldValue{
		e.Inference.Result.Fields,
		e.Document.Inference.Prediction.Fields,
	}
	if pages := e.Document.Inference.Pages; len(pages) > 0 {
		shapes = append(shapes, pages[0].Prediction.Fields)
	}

	fields := make(map[string]string)
	for _, shape := range shapes {
		if len(shape) == 0 {
			continue
		}
		for k, v := range shape {
			if t := v.text(); t != "" {
				fields[k] = t
			}
		}
		break
	}

	texts := make([]string, 0, len(e.Document.Inference.Pages))
	for _, p := range e.Document.Inference.Pages {
		if p.Inference.Text != "" {
			texts = append(texts, p.Inference.Text)
		}
	}

	return &Inference{Fields: fields, PageText: strings.Join(texts, " ")}
}

// Extract runs the full enqueue/poll/fetch cycle for one document image.
func (c *MindeeClient) Extract(ctx context.Context, image []byte) (*Inference, error) {
	job, err := c.enqueue(ctx, image)
	if err != nil {
		return nil, err
	}

	job, err = c.await(ctx, job)
	if err != nil {
		return nil, err
	}

	return c.fetchResult(ctx, job)
}

func (c *MindeeClient) enqueue(ctx context.Context, image []byte) (mindeeJob, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "document.jpg")
	if err != nil {
		return mindeeJob{}, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return mindeeJob{}, fmt.Errorf("failed to write image part: %w", err)
	}
	if err := w.WriteField("model_id", c.modelID); err != nil {
		return mindeeJob{}, fmt.Errorf("failed to write model_id field: %w", err)
	}
	if err := w.Close(); err != nil {
		return mindeeJob{}, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/inferences/enqueue", &body)
	if err != nil {
		return mindeeJob{}, fmt.Errorf("failed to create enqueue request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", c.apiKey)

	var jr mindeeJobResponse
	if err := c.do(req, &jr); err != nil {
		return mindeeJob{}, err
	}
	if jr.Job.ID == "" {
		return mindeeJob{}, fmt.Errorf("enqueue returned no job id")
	}
	return jr.Job, nil
}

// await polls the job until it reaches a terminal status.
func (c *MindeeClient) await(ctx context.Context, job mindeeJob) (mindeeJob, error) {
	pollURL := job.PollingURL
	if pollURL == "" {
		pollURL = fmt.Sprintf("%s/v2/jobs/%s", c.baseURL, job.ID)
	}

	// The enqueue status and the result of every poll, the last one
	// included, get examined before giving up.
	for i := 0; ; i++ {
		switch job.Status {
		case "Processed":
			return job, nil
		case "Failed":
			detail := "unknown error"
			if job.Error != nil {
				detail = job.Error.Detail
			}
			return mindeeJob{}, fmt.Errorf("extraction job %s failed: %s", job.ID, detail)
		}

		if i == c.maxPolls {
			return mindeeJob{}, fmt.Errorf("extraction job %s not processed after %d polls", job.ID, c.maxPolls)
		}

		select {
		case <-ctx.Done():
			return mindeeJob{}, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pollURL, nil)
		if err != nil {
			return mindeeJob{}, fmt.Errorf("failed to create poll request: %w", err)
		}
		req.Header.Set("Authorization", c.apiKey)

		var jr mindeeJobResponse
		if err := c.do(req, &jr); err != nil {
			return mindeeJob{}, err
		}
		job = jr.Job
	}
}

func (c *MindeeClient) fetchResult(ctx context.Context, job mindeeJob) (*Inference, error) {
	resultURL := job.ResultURL
	if resultURL == "" {
		resultURL = fmt.Sprintf("%s/v2/inferences/%s", c.baseURL, job.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create result request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	var envelope inferenceEnvelope
	if err := c.do(req, &envelope); err != nil {
		return nil, err
	}
	return envelope.normalize(), nil
}

func (c *MindeeClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call extraction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("extraction service returned %d: %s", resp.StatusCode, string(snippet))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode extraction response: %w", err)
	}
	return nil
}
