package cmplane

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *AdminServiceClient {
	t.Helper()
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)
	return NewAdminServiceClient(AdminServiceOptions{
		BaseURL:         server.URL,
		SiteCode:        "LAB",
		Username:        "admin",
		Password:        "secret",
		AllowSelfSigned: true,
	})
}

func writeValue(w http.ResponseWriter, rows []map[string]any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"value": rows})
}

func TestEnterSiteVerifiesSiteCode(t *testing.T) {
	client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/wmi/SMS_Site") {
			http.NotFound(w, r)
			return
		}
		if !strings.Contains(r.URL.RawQuery, "LAB") {
			writeValue(w, nil)
			return
		}
		writeValue(w, []map[string]any{{"SiteCode": "LAB"}})
	})

	restore, err := client.EnterSite(context.Background())
	if err != nil {
		t.Fatalf("enter site: %v", err)
	}
	if err := restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if client.connected {
		t.Error("restore must drop the connection state")
	}
}

func TestEnterSiteUnknownSiteCodeIsContextError(t *testing.T) {
	client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, nil)
	})

	_, err := client.EnterSite(context.Background())
	var ctxErr *ContextError
	if !errors.As(err, &ctxErr) {
		t.Fatalf("expected ContextError, got %v", err)
	}
	if ctxErr.Site != "LAB" {
		t.Errorf("wrong site in error: %q", ctxErr.Site)
	}
}

func TestListObjectsMapsRecords(t *testing.T) {
	client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/wmi/SMS_Site"):
			writeValue(w, []map[string]any{{"SiteCode": "LAB"}})
		case strings.HasSuffix(r.URL.Path, "/wmi/SMS_Package"):
			writeValue(w, []map[string]any{
				{"PackageID": "LAB00001", "Name": "App One", "PkgSourcePath": `\\srv\share\one`},
			})
		case strings.HasSuffix(r.URL.Path, "/wmi/SMS_Application"):
			writeValue(w, []map[string]any{
				{"CI_ID": float64(16777220), "LocalizedDisplayName": "Word", "SDMPackageXML": "<AppMgmtDigest></AppMgmtDigest>"},
			})
		default:
			http.NotFound(w, r)
		}
	})

	if _, err := client.EnterSite(context.Background()); err != nil {
		t.Fatalf("enter site: %v", err)
	}

	packages, err := client.ListObjects(context.Background(), KindStandardPackage)
	if err != nil {
		t.Fatalf("list packages: %v", err)
	}
	if len(packages) != 1 {
		t.Fatalf("expected one package, got %d", len(packages))
	}
	if packages[0].ID != "LAB00001" || packages[0].SourcePath != `\\srv\share\one` {
		t.Errorf("wrong record: %+v", packages[0])
	}
	if packages[0].Identity() != "App One" {
		t.Errorf("wrong identity: %q", packages[0].Identity())
	}

	apps, err := client.ListObjects(context.Background(), KindApplication)
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if apps[0].ID != "16777220" {
		t.Errorf("numeric key not converted: %q", apps[0].ID)
	}
	if len(apps[0].Digest) == 0 || apps[0].SourcePath != "" {
		t.Errorf("application digest not captured: %+v", apps[0])
	}
}

func TestListObjectsRequiresContext(t *testing.T) {
	client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, nil)
	})
	if _, err := client.ListObjects(context.Background(), KindDriver); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestSaveSourcePathPatchesEntity(t *testing.T) {
	var patched struct {
		path string
		body map[string]any
	}
	client := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/wmi/SMS_Site"):
			writeValue(w, []map[string]any{{"SiteCode": "LAB"}})
		case r.Method == http.MethodPatch:
			patched.path = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&patched.body)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	})

	if _, err := client.EnterSite(context.Background()); err != nil {
		t.Fatalf("enter site: %v", err)
	}
	if err := client.SaveSourcePath(context.Background(), KindStandardPackage, "LAB00001", `\\new\share\one`); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.Contains(patched.path, "SMS_Package('LAB00001')") {
		t.Errorf("wrong entity path: %q", patched.path)
	}
	if patched.body["PkgSourcePath"] != `\\new\share\one` {
		t.Errorf("wrong body: %v", patched.body)
	}

	if err := client.SaveSourcePath(context.Background(), KindApplication, "1", "x"); err == nil {
		t.Error("applications have no scalar source path")
	}
}
