package cmplane

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/open-mgmt-platform/cm-content-tool/internal/appdigest"
	"github.com/open-mgmt-platform/cm-content-tool/internal/utils/logger"
	"github.com/open-mgmt-platform/cm-content-tool/internal/utils/network"
)

// AdminServiceClient talks to the site's admin service REST endpoint. It
// implements Client over the OData wmi/ routes.
type AdminServiceClient struct {
	baseURL   string
	siteCode  string
	username  string
	password  string
	http      *http.Client
	connected bool
}

// AdminServiceOptions configures NewAdminServiceClient.
type AdminServiceOptions struct {
	// Server is the site server FQDN. The endpoint is assumed at
	// https://<server>/AdminService unless BaseURL overrides it.
	Server   string
	BaseURL  string
	SiteCode string
	Username string
	Password string
	Timeout  time.Duration
	// AllowSelfSigned accepts the site server's self-signed certificate.
	AllowSelfSigned bool
}

func NewAdminServiceClient(opts AdminServiceOptions) *AdminServiceClient {
	base := opts.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s/AdminService", opts.Server)
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &AdminServiceClient{
		baseURL:  strings.TrimRight(base, "/"),
		siteCode: opts.SiteCode,
		username: opts.Username,
		password: opts.Password,
		http:     network.NewSecureHTTPClient(timeout, opts.AllowSelfSigned),
	}
}

// EnterSite verifies the site code against SMS_Site and marks the session
// connected. The returned restore handle drops the connection state and
// closes idle transport connections.
func (c *AdminServiceClient) EnterSite(ctx context.Context) (RestoreFunc, error) {
	log := logger.Logger()

	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("SiteCode eq '%s'", c.siteCode))
	var sites []map[string]any
	if err := c.getJSON(ctx, "wmi/SMS_Site", query, &sites); err != nil {
		return nil, &ContextError{Site: c.siteCode, Err: err}
	}
	if len(sites) == 0 {
		return nil, &ContextError{Site: c.siteCode, Err: fmt.Errorf("site code not found")}
	}

	c.connected = true
	log.Infof("Entered site %s at %s", c.siteCode, c.baseURL)

	wasConnected := false
	return func() error {
		c.connected = wasConnected
		c.http.CloseIdleConnections()
		log.Debugf("Restored prior context for site %s", c.siteCode)
		return nil
	}, nil
}

// ListObjects enumerates every object of the kind, selecting only the
// properties the remap run reads.
func (c *AdminServiceClient) ListObjects(ctx context.Context, kind ObjectKind) ([]ObjectRecord, error) {
	if !c.connected {
		return nil, ErrNotConnected
	}
	info, ok := classes[kind]
	if !ok {
		return nil, fmt.Errorf("unknown object kind %q", kind)
	}

	query := url.Values{}
	query.Set("$select", strings.Join([]string{info.KeyProperty, info.NameProperty, info.PathProperty}, ","))
	var rows []map[string]any
	if err := c.getJSON(ctx, "wmi/"+info.ClassName, query, &rows); err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}

	records := make([]ObjectRecord, 0, len(rows))
	for _, row := range rows {
		rec := ObjectRecord{
			Kind: kind,
			ID:   stringProperty(row, info.KeyProperty),
			Name: stringProperty(row, info.NameProperty),
		}
		if kind == KindApplication {
			rec.Digest = []byte(stringProperty(row, info.PathProperty))
		} else {
			rec.SourcePath = stringProperty(row, info.PathProperty)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *AdminServiceClient) SaveSourcePath(ctx context.Context, kind ObjectKind, id, path string) error {
	if !c.connected {
		return ErrNotConnected
	}
	info, ok := classes[kind]
	if !ok || kind == KindApplication {
		return fmt.Errorf("kind %q has no scalar source path", kind)
	}
	body := map[string]any{info.PathProperty: path}
	return c.sendJSON(ctx, http.MethodPatch, c.entityPath(info, id), body, nil)
}

func (c *AdminServiceClient) SaveApplicationDigest(ctx context.Context, id string, digest []byte) error {
	if !c.connected {
		return ErrNotConnected
	}
	info := classes[KindApplication]
	body := map[string]any{info.PathProperty: string(digest)}
	return c.sendJSON(ctx, http.MethodPatch, c.entityPath(info, id), body, nil)
}

func (c *AdminServiceClient) CreateApplication(ctx context.Context, spec ApplicationSpec) (string, error) {
	if !c.connected {
		return "", ErrNotConnected
	}
	digest, err := appdigest.Encode(&appdigest.Document{
		DeploymentTypes: []appdigest.DeploymentType{{
			Title:      spec.Name + " - " + spec.Technology,
			Technology: spec.Technology,
			Installer: appdigest.Installer{
				CommandLine: spec.InstallCommand,
				Contents: []appdigest.ContentDescriptor{
					appdigest.NewContentDescriptor(spec.ContentLocation),
				},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("building digest for %q: %w", spec.Name, err)
	}
	body := map[string]any{
		"LocalizedDisplayName": spec.Name,
		"Manufacturer":         spec.Publisher,
		"SoftwareVersion":      spec.Version,
		"SDMPackageXML":        string(digest),
	}
	var created map[string]any
	if err := c.sendJSON(ctx, http.MethodPost, "wmi/SMS_Application", body, &created); err != nil {
		return "", fmt.Errorf("creating application %q: %w", spec.Name, err)
	}
	return stringProperty(created, "CI_ID"), nil
}

func (c *AdminServiceClient) CreateCollection(ctx context.Context, spec CollectionSpec) (string, error) {
	if !c.connected {
		return "", ErrNotConnected
	}
	body := map[string]any{
		"Name":                  spec.Name,
		"LimitToCollectionName": spec.LimitingCollection,
		"CollectionType":        2, // device collection
		"RefreshType":           2, // periodic
	}
	var created map[string]any
	if err := c.sendJSON(ctx, http.MethodPost, "wmi/SMS_Collection", body, &created); err != nil {
		return "", fmt.Errorf("creating collection %q: %w", spec.Name, err)
	}
	id := stringProperty(created, "CollectionID")

	if spec.QueryExpression != "" {
		rule := map[string]any{
			"collectionRule": map[string]any{
				"@odata.type":     "#AdminService.SMS_CollectionRuleQuery",
				"RuleName":        spec.Name,
				"QueryExpression": spec.QueryExpression,
			},
		}
		path := fmt.Sprintf("wmi/SMS_Collection('%s')/AdminService.AddMembershipRule", id)
		if err := c.sendJSON(ctx, http.MethodPost, path, rule, nil); err != nil {
			return id, fmt.Errorf("adding membership rule to %s: %w", id, err)
		}
	}
	return id, nil
}

func (c *AdminServiceClient) CreateDeployment(ctx context.Context, spec DeploymentSpec) (string, error) {
	if !c.connected {
		return "", ErrNotConnected
	}
	body := map[string]any{
		"AssignedCI_UniqueID": spec.ApplicationID,
		"TargetCollectionID":  spec.CollectionID,
		"DesiredConfigType":   deploymentAction(spec.Action),
		"OfferTypeID":         deploymentPurpose(spec.Purpose),
	}
	var created map[string]any
	if err := c.sendJSON(ctx, http.MethodPost, "wmi/SMS_ApplicationAssignment", body, &created); err != nil {
		return "", fmt.Errorf("deploying %s to %s: %w", spec.ApplicationID, spec.CollectionID, err)
	}
	return stringProperty(created, "AssignmentID"), nil
}

func (c *AdminServiceClient) DistributeContent(ctx context.Context, applicationID, dpGroup string) error {
	if !c.connected {
		return ErrNotConnected
	}
	path := fmt.Sprintf("wmi/SMS_Application(%s)/AdminService.DistributeContent", applicationID)
	body := map[string]any{"DistributionPointGroupName": dpGroup}
	return c.sendJSON(ctx, http.MethodPost, path, body, nil)
}

// entityPath builds the OData entity path, quoting string keys. CI_ID keys
// are numeric and unquoted.
func (c *AdminServiceClient) entityPath(info classInfo, id string) string {
	if info.KeyProperty == "CI_ID" {
		return fmt.Sprintf("wmi/%s(%s)", info.ClassName, id)
	}
	return fmt.Sprintf("wmi/%s('%s')", info.ClassName, id)
}

func (c *AdminServiceClient) getJSON(ctx context.Context, path string, query url.Values, out *[]map[string]any) error {
	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}

	var envelope struct {
		Value []map[string]any `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	*out = envelope.Value
	return nil
}

func (c *AdminServiceClient) sendJSON(ctx context.Context, method, path string, body any, out *map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func httpError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		return fmt.Errorf("admin service returned %s", resp.Status)
	}
	return fmt.Errorf("admin service returned %s: %s", resp.Status, msg)
}

// stringProperty reads a property that may arrive as a string or a number.
func stringProperty(row map[string]any, name string) string {
	switch v := row[name].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func deploymentAction(action string) int {
	if strings.EqualFold(action, "Uninstall") {
		return 2
	}
	return 1
}

func deploymentPurpose(purpose string) int {
	if strings.EqualFold(purpose, "Available") {
		return 2
	}
	return 0
}
