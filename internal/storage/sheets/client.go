package sheets

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"elem-admin/internal/storage"
)

// ErrRemote marks a write the spreadsheet API did not accept: a non-2xx status or an
// explicit error in the body.
var ErrRemote = errors.New("spreadsheet api error")

// Client talks to one spreadsheet API deployment.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	FileURL string          `json:"fileUrl"`
}

// File is an upload to a drive folder.
type File struct {
	FolderID string
	Name     string
	MimeType string
	Data     []byte
}

// GetData returns every row of the sheet, header row included.
func (c *Client) GetData(ctx context.Context, sheet string) ([][]any, error) {
	const op = "storage.sheets.GetData"

	q := url.Values{}
	q.Set("sheet", sheet)
	q.Set("action", "getData")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	env, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: sheet=%s: %w", op, sheet, err)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return [][]any{}, nil
	}

	var rows [][]any
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		return nil, fmt.Errorf("%s: sheet=%s: decode rows: %w", op, sheet, err)
	}

	return rows, nil
}

func (c *Client) Insert(ctx context.Context, sheet string, row []any) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("storage.sheets.Insert: %w", err)
	}
	_, err = c.post(ctx, "insert", url.Values{
		"sheetName": {sheet},
		"rowData":   {string(data)},
	})
	return err
}

func (c *Client) Update(ctx context.Context, sheet string, rowIndex int, row []any) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("storage.sheets.Update: %w", err)
	}
	_, err = c.post(ctx, "update", url.Values{
		"sheetName": {sheet},
		"rowIndex":  {strconv.Itoa(rowIndex)},
		"rowData":   {string(data)},
	})
	return err
}

func (c *Client) InsertBatch(ctx context.Context, sheet string, rows [][]any) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("storage.sheets.InsertBatch: %w", err)
	}
	_, err = c.post(ctx, "insertBatch", url.Values{
		"sheetName": {sheet},
		"rowsData":  {string(data)},
	})
	return err
}

func (c *Client) Delete(ctx context.Context, sheet string, rowIndex int) error {
	_, err := c.post(ctx, "delete", url.Values{
		"sheetName": {sheet},
		"rowIndex":  {strconv.Itoa(rowIndex)},
	})
	return err
}

func (c *Client) DeleteBySerialAndItemNo(ctx context.Context, sheet, serialNo string, itemNo int) error {
	_, err := c.post(ctx, "deleteBySerialAndItemNo", url.Values{
		"sheetName": {sheet},
		"serialNo":  {serialNo},
		"itemNo":    {strconv.Itoa(itemNo)},
	})
	return err
}

func (c *Client) UpdateBySerialAndItemNo(ctx context.Context, sheet, serialNo string, itemNo int, row []any) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("storage.sheets.UpdateBySerialAndItemNo: %w", err)
	}
	_, err = c.post(ctx, "updateBySerialAndItemNo", url.Values{
		"sheetName": {sheet},
		"serialNo":  {serialNo},
		"itemNo":    {strconv.Itoa(itemNo)},
		"rowData":   {string(data)},
	})
	return err
}

func (c *Client) UpdateItemNosForSerial(ctx context.Context, sheet, serialNo string, mappings []storage.ItemNoMapping) error {
	data, err := json.Marshal(mappings)
	if err != nil {
		return fmt.Errorf("storage.sheets.UpdateItemNosForSerial: %w", err)
	}
	_, err = c.post(ctx, "updateItemNosForSerial", url.Values{
		"sheetName":      {sheet},
		"serialNo":       {serialNo},
		"itemNoMappings": {string(data)},
	})
	return err
}

// UploadFile stores the file in a drive folder and returns its URL.
func (c *Client) UploadFile(ctx context.Context, f File) (string, error) {
	env, err := c.post(ctx, "uploadFile", url.Values{
		"folderId":   {f.FolderID},
		"fileName":   {f.Name},
		"base64Data": {DataURI(f.MimeType, f.Data)},
		"mimeType":   {f.MimeType},
	})
	if err != nil {
		return "", err
	}
	return env.FileURL, nil
}

func (c *Client) post(ctx context.Context, action string, form url.Values) (*envelope, error) {
	op := "storage.sheets." + action

	form.Set("action", action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	env, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return env, nil
}

func (c *Client) do(req *http.Request) (*envelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrRemote, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// Some deployments answer success=false with a "Success" message; only an explicit
	// error field counts as a failure.
	if env.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRemote, env.Error)
	}

	return &env, nil
}

// DataURI encodes a payload the way the upload endpoint expects it.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI splits a base64 data URI into its mime type and payload.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errors.New("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("malformed data uri")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, errors.New("data uri is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri: %w", err)
	}
	return mimeType, data, nil
}
