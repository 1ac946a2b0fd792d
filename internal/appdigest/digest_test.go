package appdigest

import (
	"bytes"
	"strings"
	"testing"
)

func sampleDocument() *Document {
	return &Document{
		DeploymentTypes: []DeploymentType{
			{
				Title:      "MSI install",
				Technology: "Script",
				Installer: Installer{
					CommandLine: `msiexec /i app.msi /qn`,
					Contents: []ContentDescriptor{{
						ContentID:               "Content_a",
						Location:                `\\srv\share\app`,
						FallbackToUnprotectedDP: false,
						OnFastNetwork:           OnNetworkDoNothing,
						OnSlowNetwork:           OnNetworkDoNothing,
						PeerCache:               true,
						PinOnClient:             true,
					}},
				},
			},
			{
				Title:      "Empty",
				Technology: "Script",
			},
			{
				Title:      "App-V",
				Technology: "AppV",
				Installer: Installer{
					Contents: []ContentDescriptor{
						{ContentID: "Content_b", Location: `\\srv\share\appv`},
						{ContentID: "Content_c", Location: `\\srv\share\appv-extra`},
					},
				},
			},
		},
	}
}

func TestRoundTripIsByteStable(t *testing.T) {
	raw, err := Encode(sampleDocument())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	doc, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	again, err := Encode(doc)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(raw, again) {
		t.Fatalf("round trip not byte-stable:\n%s\n---\n%s", raw, again)
	}
}

func TestDecodePreservesAllDeploymentTypes(t *testing.T) {
	raw, err := Encode(sampleDocument())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	doc, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.DeploymentTypes) != 3 {
		t.Fatalf("expected 3 deployment types, got %d", len(doc.DeploymentTypes))
	}
	if len(doc.DeploymentTypes[2].Installer.Contents) != 2 {
		t.Errorf("secondary descriptors lost: %+v", doc.DeploymentTypes[2].Installer)
	}
}

func TestPrimaryLocation(t *testing.T) {
	doc := sampleDocument()
	if loc, ok := doc.DeploymentTypes[0].PrimaryLocation(); !ok || loc != `\\srv\share\app` {
		t.Errorf("wrong primary location: %q %v", loc, ok)
	}
	if _, ok := doc.DeploymentTypes[1].PrimaryLocation(); ok {
		t.Error("deployment type without descriptors must report no location")
	}
}

func TestReplacePrimaryContentResetsPolicy(t *testing.T) {
	doc := sampleDocument()
	dt := &doc.DeploymentTypes[0]
	if err := dt.ReplacePrimaryContent(`\\new\share\app`); err != nil {
		t.Fatalf("replace: %v", err)
	}

	desc := dt.Installer.Contents[0]
	if desc.Location != `\\new\share\app` {
		t.Errorf("location not replaced: %q", desc.Location)
	}
	if desc.ContentID == "Content_a" || !strings.HasPrefix(desc.ContentID, "Content_") {
		t.Errorf("expected a fresh content identity, got %q", desc.ContentID)
	}
	if !desc.FallbackToUnprotectedDP {
		t.Error("fallback-to-unprotected must default to true")
	}
	if desc.OnFastNetwork != OnNetworkDownload || desc.OnSlowNetwork != OnNetworkDoNothing {
		t.Errorf("network handling not reset: %q/%q", desc.OnFastNetwork, desc.OnSlowNetwork)
	}
	if desc.PeerCache || desc.PinOnClient {
		t.Error("peer-cache and pin-on-client must default to false")
	}

	// the other deployment types are untouched
	if doc.DeploymentTypes[2].Installer.Contents[0].ContentID != "Content_b" {
		t.Error("unrelated deployment type modified")
	}
	if doc.DeploymentTypes[2].Installer.Contents[1].ContentID != "Content_c" {
		t.Error("secondary descriptor modified")
	}
}

func TestReplacePrimaryContentRequiresDescriptor(t *testing.T) {
	doc := sampleDocument()
	if err := doc.DeploymentTypes[1].ReplacePrimaryContent(`\\x`); err == nil {
		t.Fatal("expected an error for a deployment type without descriptors")
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("not xml at all"),
		[]byte("<AppMgmtDigest><DeploymentType></AppMgmtDigest>"),
	}
	for _, raw := range cases {
		if _, err := Decode(raw); err == nil {
			t.Errorf("expected decode error for %q", raw)
		}
	}
}

// FuzzDecode ensures arbitrary input never panics the decoder
func FuzzDecode(f *testing.F) {
	seed, _ := Encode(sampleDocument())
	f.Add(seed)
	f.Add([]byte("<AppMgmtDigest/>"))
	f.Add([]byte(""))
	f.Add([]byte("<AppMgmtDigest><DeploymentType><Installer><Contents><Content ContentId=\"x\"><Location>\\\\a</Location></Content></Contents></Installer></DeploymentType></AppMgmtDigest>"))
	f.Add([]byte("<<<"))

	f.Fuzz(func(t *testing.T, raw []byte) {
		doc, err := Decode(raw)
		if err != nil {
			if doc != nil {
				t.Error("expected nil document on error")
			}
			return
		}
		if doc == nil {
			t.Error("expected non-nil document without error")
		}
	})
}
