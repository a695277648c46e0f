package mailprovider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// gmailPageSize is the Gmail API maximum for Users.Messages.List.
const gmailPageSize = 500

// GmailClient talks to the Gmail REST API for one user's access token.
type GmailClient struct {
	svc *gmail.Service
}

func NewGmailClient(ctx context.Context, accessToken string) (*GmailClient, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return &GmailClient{svc: svc}, nil
}

func (c *GmailClient) ValidateRange(ctx context.Context, startISO, endISO string, rules RangeRules) (*RangeResult, error) {
	window, rejected := checkRange(startISO, endISO, rules.MaxDays)
	if rejected != nil {
		return rejected, nil
	}
	return c.enumerate(ctx, window, rules.MaxMessages)
}

func (c *GmailClient) GetAllMessageIDsInRange(ctx context.Context, startISO, endISO string, maxMessages int) (*RangeResult, error) {
	window, rejected := checkRange(startISO, endISO, 0)
	if rejected != nil {
		return rejected, nil
	}
	return c.enumerate(ctx, window, maxMessages)
}

func (c *GmailClient) enumerate(ctx context.Context, window *rangeWindow, maxMessages int) (*RangeResult, error) {
	// Gmail range queries work on Unix seconds; after/before bound the
	// internal date.
	query := fmt.Sprintf("in:inbox after:%d before:%d", window.start.Unix(), window.end.Unix())

	ids, err := c.listMessageIDs(ctx, query, maxMessages+1)
	if err != nil {
		return nil, err
	}
	return finishEnumeration(window, ids, maxMessages), nil
}

// listMessageIDs pages through Users.Messages.List until limit identifiers
// were collected or the result set is exhausted.
func (c *GmailClient) listMessageIDs(ctx context.Context, query string, limit int) ([]string, error) {
	ids := make([]string, 0, limit)
	pageToken := ""

	for len(ids) < limit {
		pageSize := int64(limit - len(ids))
		if pageSize > gmailPageSize {
			pageSize = gmailPageSize
		}

		call := c.svc.Users.Messages.List("me").Q(query).MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, wrapGmailErr("list messages", err)
		}

		for _, msg := range resp.Messages {
			ids = append(ids, msg.Id)
			if len(ids) == limit {
				return ids, nil
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return ids, nil
}

func (c *GmailClient) GetRawMailByID(ctx context.Context, messageID string, maxChars int) (*RawMail, error) {
	msg, err := c.svc.Users.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, wrapGmailErr("get message", err)
	}

	var headers []Header
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			headers = append(headers, Header{Name: h.Name, Value: h.Value})
		}
	}

	body := extractGmailBody(msg.Payload)

	return &RawMail{
		ID:      msg.Id,
		From:    headerValue(headers, "From"),
		Subject: headerValue(headers, "Subject"),
		Date:    time.Unix(msg.InternalDate/1000, 0).UTC().Format(time.RFC3339),
		Snippet: msg.Snippet,
		Body:    truncate(body, maxChars),
		Headers: headers,
	}, nil
}

func (c *GmailClient) GetLatestMails(ctx context.Context, limit int) ([]RawMail, error) {
	resp, err := c.svc.Users.Messages.List("me").MaxResults(int64(limit)).Context(ctx).Do()
	if err != nil {
		return nil, wrapGmailErr("list messages", err)
	}

	mails := make([]RawMail, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		msg, err := c.svc.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject", "Date").
			Context(ctx).Do()
		if err != nil {
			return nil, wrapGmailErr("get message", err)
		}

		var headers []Header
		if msg.Payload != nil {
			for _, h := range msg.Payload.Headers {
				headers = append(headers, Header{Name: h.Name, Value: h.Value})
			}
		}

		mails = append(mails, RawMail{
			ID:      msg.Id,
			From:    headerValue(headers, "From"),
			Subject: headerValue(headers, "Subject"),
			Date:    time.Unix(msg.InternalDate/1000, 0).UTC().Format(time.RFC3339),
			Snippet: msg.Snippet,
			Headers: headers,
		})
	}

	return mails, nil
}

// extractGmailBody walks the MIME tree and returns the best available body:
// plain text when present, otherwise HTML stripped down to text. Gmail body
// parts are base64url encoded.
func extractGmailBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	var plainBody, htmlBody string

	if payload.Body != nil && payload.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(payload.Body.Data); err == nil {
			if payload.MimeType == "text/html" {
				htmlBody = string(data)
			} else {
				plainBody = string(data)
			}
		}
	}

	var walk func(parts []*gmail.MessagePart)
	walk = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.Body != nil && part.Body.Data != "" {
				if data, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
					switch part.MimeType {
					case "text/plain":
						if plainBody == "" {
							plainBody = string(data)
						}
					case "text/html":
						if htmlBody == "" {
							htmlBody = string(data)
						}
					}
				}
			}
			if len(part.Parts) > 0 {
				walk(part.Parts)
			}
		}
	}
	walk(payload.Parts)

	if plainBody != "" {
		return strings.TrimSpace(plainBody)
	}
	return stripHTML(htmlBody)
}

func headerValue(headers []Header, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func wrapGmailErr(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized {
		return fmt.Errorf("gmail %s: %w", op, ErrUnauthorized)
	}
	return fmt.Errorf("gmail %s: %w", op, err)
}
