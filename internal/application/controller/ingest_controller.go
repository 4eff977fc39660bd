package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"sqs-output/internal/application/buffer"
	"sqs-output/internal/domain/usecase/forward"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/html/charset"
)

// Appender receives serialized records for later delivery
type Appender interface {
	Append(body []byte) error
}

// IngestResponse is returned when records are accepted
type IngestResponse struct {
	Accepted int `json:"accepted"`
}

type IngestController struct {
	api     *echo.Group
	useCase forward.UseCase
	buffer  Appender
}

func NewIngestController(api *echo.Group, useCase forward.UseCase, buffer Appender) *IngestController {
	return &IngestController{api: api, useCase: useCase, buffer: buffer}
}

// InitIngestRoutes initializes record ingestion routes
func (controller *IngestController) InitIngestRoutes() {
	controller.api.POST("/logs/:tag", controller.Ingest())
}

// Ingest accepts a JSON object or an array of JSON objects, all tagged with the :tag path parameter
func (controller *IngestController) Ingest() echo.HandlerFunc {
	return func(c echo.Context) error {
		tag := c.Param("tag")

		payload, err := readBody(c.Request())
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		records, err := decodeRecords(payload)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		now := time.Now()
		accepted := 0
		for _, fields := range records {
			body, err := controller.useCase.Format(tag, fields, now)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			if err := controller.buffer.Append(body); err != nil {
				if errors.Is(err, buffer.ErrBufferFull) {
					return c.JSON(http.StatusServiceUnavailable, IngestResponse{Accepted: accepted})
				}
				return err
			}
			accepted++
		}

		return c.JSON(http.StatusAccepted, IngestResponse{Accepted: accepted})
	}
}

// readBody reads the request body as UTF-8, transcoding from the charset declared in Content-Type
func readBody(req *http.Request) ([]byte, error) {
	body := io.Reader(req.Body)

	if _, params, err := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType)); err == nil {
		if label := params["charset"]; label != "" && !strings.EqualFold(label, "utf-8") {
			reader, err := charset.NewReaderLabel(label, body)
			if err != nil {
				return nil, errors.New("unsupported charset " + label)
			}
			body = reader
		}
	}

	payload, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.New("unable to read body")
	}
	return payload, nil
}

func decodeRecords(payload []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}

	if trimmed[0] == '[' {
		var records []map[string]any
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, errors.New("body must be a JSON object or an array of JSON objects")
		}
		return records, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, errors.New("body must be a JSON object or an array of JSON objects")
	}
	return []map[string]any{fields}, nil
}
