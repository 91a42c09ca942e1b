package keyrate

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	customError "github.com/segyhp/claim-calculator/pkg/errors"
)

// DefaultCBRURL is the central bank DailyInfo SOAP endpoint.
const DefaultCBRURL = "http://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"

const mainInfoRequest = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <MainInfoXML xmlns="http://web.cbr.ru/" />
  </soap:Body>
</soap:Envelope>
`

// CBRClient reads the key rate from the central bank MainInfoXML operation.
type CBRClient struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewCBRClient(url string, timeout time.Duration, logger *zap.Logger) *CBRClient {
	if url == "" {
		url = DefaultCBRURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CBRClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *CBRClient) KeyRate(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(mainInfoRequest))
	if err != nil {
		return decimal.Zero, fmt.Errorf("build key rate request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("request key rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("request key rate: unexpected status %d", resp.StatusCode)
	}

	rate, err := parseKeyRate(resp.Body)
	if err != nil {
		return decimal.Zero, err
	}

	c.logger.Debug("key rate fetched",
		zap.String("rate", rate.String()),
		zap.Duration("took", time.Since(start)),
	)
	return rate, nil
}

// parseKeyRate expects exactly one keyRate element anywhere in the document.
func parseKeyRate(r io.Reader) (decimal.Decimal, error) {
	decoder := xml.NewDecoder(r)
	// some cbr.ru replies declare windows-1251
	decoder.CharsetReader = charset.NewReaderLabel

	var values []string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %v", customError.ErrMalformedKeyRateReply, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "keyRate" {
			continue
		}
		var value string
		if err := decoder.DecodeElement(&value, &start); err != nil {
			return decimal.Zero, fmt.Errorf("%w: %v", customError.ErrMalformedKeyRateReply, err)
		}
		values = append(values, value)
	}

	if len(values) != 1 {
		return decimal.Zero, fmt.Errorf("%w: found %d keyRate elements", customError.ErrMalformedKeyRateReply, len(values))
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(values[0], ",", ".")))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", customError.ErrMalformedKeyRateReply, err)
	}
	return rate, nil
}
