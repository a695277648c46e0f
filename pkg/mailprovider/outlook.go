package mailprovider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
	"github.com/microsoftgraph/msgraph-sdk-go/users"
)

// outlookPageSize bounds one Graph page while enumerating identifiers.
const outlookPageSize = 100

// OutlookClient talks to Microsoft Graph for one user's access token.
type OutlookClient struct {
	client *msgraphsdk.GraphServiceClient
}

// staticTokenCredential adapts an already-issued delegated access token to
// the azcore credential interface the Graph SDK expects.
type staticTokenCredential struct {
	token string
}

func (c *staticTokenCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{
		Token:     c.token,
		ExpiresOn: time.Now().Add(time.Hour),
	}, nil
}

func NewOutlookClient(accessToken string) (*OutlookClient, error) {
	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(&staticTokenCredential{token: accessToken}, []string{})
	if err != nil {
		return nil, fmt.Errorf("unable to create Graph client: %w", err)
	}
	return &OutlookClient{client: client}, nil
}

func (c *OutlookClient) ValidateRange(ctx context.Context, startISO, endISO string, rules RangeRules) (*RangeResult, error) {
	window, rejected := checkRange(startISO, endISO, rules.MaxDays)
	if rejected != nil {
		return rejected, nil
	}
	return c.enumerate(ctx, window, rules.MaxMessages)
}

func (c *OutlookClient) GetAllMessageIDsInRange(ctx context.Context, startISO, endISO string, maxMessages int) (*RangeResult, error) {
	window, rejected := checkRange(startISO, endISO, 0)
	if rejected != nil {
		return rejected, nil
	}
	return c.enumerate(ctx, window, maxMessages)
}

func (c *OutlookClient) enumerate(ctx context.Context, window *rangeWindow, maxMessages int) (*RangeResult, error) {
	// Outlook range queries are ISO timestamp filters on receivedDateTime.
	filter := fmt.Sprintf("receivedDateTime ge %s and receivedDateTime lt %s",
		window.start.Format(time.RFC3339), window.end.Format(time.RFC3339))
	top := int32(outlookPageSize)

	requestConfig := &users.ItemMessagesRequestBuilderGetRequestConfiguration{
		QueryParameters: &users.ItemMessagesRequestBuilderGetQueryParameters{
			Top:     &top,
			Filter:  &filter,
			Select:  []string{"id"},
			Orderby: []string{"receivedDateTime desc"},
		},
	}

	limit := maxMessages + 1
	ids := make([]string, 0, limit)

	page, err := c.client.Me().Messages().Get(ctx, requestConfig)
	if err != nil {
		return nil, wrapOutlookErr("list messages", err)
	}

	for {
		for _, msg := range page.GetValue() {
			if id := msg.GetId(); id != nil {
				ids = append(ids, *id)
				if len(ids) == limit {
					return finishEnumeration(window, ids, maxMessages), nil
				}
			}
		}

		next := page.GetOdataNextLink()
		if next == nil || *next == "" {
			break
		}
		page, err = users.NewItemMessagesRequestBuilder(*next, c.client.GetAdapter()).Get(ctx, nil)
		if err != nil {
			return nil, wrapOutlookErr("list messages", err)
		}
	}

	return finishEnumeration(window, ids, maxMessages), nil
}

func (c *OutlookClient) GetRawMailByID(ctx context.Context, messageID string, maxChars int) (*RawMail, error) {
	requestConfig := &users.ItemMessagesMessageItemRequestBuilderGetRequestConfiguration{
		QueryParameters: &users.ItemMessagesMessageItemRequestBuilderGetQueryParameters{
			Select: []string{"id", "subject", "from", "receivedDateTime", "bodyPreview", "body", "internetMessageHeaders"},
		},
	}

	msg, err := c.client.Me().Messages().ByMessageId(messageID).Get(ctx, requestConfig)
	if err != nil {
		return nil, wrapOutlookErr("get message", err)
	}

	return normalizeOutlookMessage(msg, maxChars), nil
}

func (c *OutlookClient) GetLatestMails(ctx context.Context, limit int) ([]RawMail, error) {
	top := int32(limit)
	requestConfig := &users.ItemMessagesRequestBuilderGetRequestConfiguration{
		QueryParameters: &users.ItemMessagesRequestBuilderGetQueryParameters{
			Top:     &top,
			Select:  []string{"id", "subject", "from", "receivedDateTime", "bodyPreview"},
			Orderby: []string{"receivedDateTime desc"},
		},
	}

	page, err := c.client.Me().Messages().Get(ctx, requestConfig)
	if err != nil {
		return nil, wrapOutlookErr("list messages", err)
	}

	mails := make([]RawMail, 0, len(page.GetValue()))
	for _, msg := range page.GetValue() {
		mails = append(mails, *normalizeOutlookMessage(msg, 0))
	}
	return mails, nil
}

// normalizeOutlookMessage converts a Graph message into the shared RawMail
// shape. Multipart selection happens server side; the body carries a single
// content block whose contentType decides whether HTML stripping is needed.
func normalizeOutlookMessage(msg models.Messageable, maxChars int) *RawMail {
	mail := &RawMail{}

	if id := msg.GetId(); id != nil {
		mail.ID = *id
	}
	if subject := msg.GetSubject(); subject != nil {
		mail.Subject = *subject
	}
	if preview := msg.GetBodyPreview(); preview != nil {
		mail.Snippet = *preview
	}
	if received := msg.GetReceivedDateTime(); received != nil {
		mail.Date = received.UTC().Format(time.RFC3339)
	}

	mail.From = formatOutlookFrom(msg.GetFrom())

	if body := msg.GetBody(); body != nil && body.GetContent() != nil {
		content := *body.GetContent()
		if ct := body.GetContentType(); ct != nil && *ct == models.HTML_BODYTYPE {
			content = stripHTML(content)
		} else {
			content = strings.TrimSpace(content)
		}
		mail.Body = truncate(content, maxChars)
	}

	for _, h := range msg.GetInternetMessageHeaders() {
		header := Header{}
		if name := h.GetName(); name != nil {
			header.Name = *name
		}
		if value := h.GetValue(); value != nil {
			header.Value = *value
		}
		mail.Headers = append(mail.Headers, header)
	}

	return mail
}

func formatOutlookFrom(from models.Recipientable) string {
	if from == nil {
		return ""
	}
	addr := from.GetEmailAddress()
	if addr == nil {
		return ""
	}

	var name, address string
	if n := addr.GetName(); n != nil {
		name = *n
	}
	if a := addr.GetAddress(); a != nil {
		address = *a
	}

	if name != "" && address != "" {
		return fmt.Sprintf("%s <%s>", name, address)
	}
	if address != "" {
		return address
	}
	return name
}

func wrapOutlookErr(op string, err error) error {
	var oerr *odataerrors.ODataError
	if errors.As(err, &oerr) && oerr.ResponseStatusCode == http.StatusUnauthorized {
		return fmt.Errorf("outlook %s: %w", op, ErrUnauthorized)
	}
	return fmt.Errorf("outlook %s: %w", op, err)
}
