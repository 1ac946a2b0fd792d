// Package appdigest reads and writes the installer-content document embedded
// in an application record. The document carries one DeploymentType element
// per installation technology; each deployment type holds an ordered list of
// content descriptors under Installer/Contents.
package appdigest

import (
	"encoding/xml"
	"fmt"

	"github.com/google/uuid"
)

// Network handling modes for a content descriptor.
const (
	OnNetworkDownload  = "Download"
	OnNetworkDoNothing = "DoNothing"
)

// Document is the parsed installer-content document.
type Document struct {
	XMLName         xml.Name         `xml:"AppMgmtDigest"`
	DeploymentTypes []DeploymentType `xml:"DeploymentType"`
}

// DeploymentType is one installation technology of the application.
type DeploymentType struct {
	Title      string    `xml:"Title"`
	Technology string    `xml:"Technology"`
	Installer  Installer `xml:"Installer"`
}

// Installer holds the deployment type's install command and its content
// descriptors in document order.
type Installer struct {
	CommandLine string              `xml:"InstallCommandLine,omitempty"`
	Contents    []ContentDescriptor `xml:"Contents>Content"`
}

// ContentDescriptor describes one source-content location and its
// distribution-handling policy.
type ContentDescriptor struct {
	ContentID               string `xml:"ContentId,attr"`
	Location                string `xml:"Location"`
	FallbackToUnprotectedDP bool   `xml:"FallbackToUnprotectedDP"`
	OnFastNetwork           string `xml:"OnFastNetwork"`
	OnSlowNetwork           string `xml:"OnSlowNetwork"`
	PeerCache               bool   `xml:"PeerCache"`
	PinOnClient             bool   `xml:"PinOnClient"`
}

// Decode parses a raw installer-content document. Every deployment type is
// preserved, not only the first. Malformed input yields an error, never a
// panic.
func Decode(raw []byte) (*Document, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty installer-content document")
	}
	var doc Document
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing installer-content document: %w", err)
	}
	return &doc, nil
}

// Encode serializes the document in canonical form. For a document produced
// by Encode, Decode followed by Encode returns byte-identical output.
func Encode(doc *Document) ([]byte, error) {
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing installer-content document: %w", err)
	}
	return append(out, '\n'), nil
}

// PrimaryLocation returns the location of the deployment type's first
// content descriptor. ok is false when the deployment type has no
// descriptors.
func (dt *DeploymentType) PrimaryLocation() (string, bool) {
	if len(dt.Installer.Contents) == 0 {
		return "", false
	}
	return dt.Installer.Contents[0].Location, true
}

// ReplacePrimaryContent swaps the deployment type's first content descriptor
// for a fresh one pointing at location. The new descriptor gets a new
// content ID and the default policy flags; prior per-descriptor
// customization is not preserved.
func (dt *DeploymentType) ReplacePrimaryContent(location string) error {
	if len(dt.Installer.Contents) == 0 {
		return fmt.Errorf("deployment type %q has no content descriptors", dt.Title)
	}
	dt.Installer.Contents[0] = NewContentDescriptor(location)
	return nil
}

// NewContentDescriptor builds a descriptor for location with a fresh
// identity and the default distribution policy: fall back to unprotected
// distribution points, download on fast networks, do nothing on slow ones,
// no peer cache, not pinned on clients.
func NewContentDescriptor(location string) ContentDescriptor {
	return ContentDescriptor{
		ContentID:               "Content_" + uuid.NewString(),
		Location:                location,
		FallbackToUnprotectedDP: true,
		OnFastNetwork:           OnNetworkDownload,
		OnSlowNetwork:           OnNetworkDoNothing,
		PeerCache:               false,
		PinOnClient:             false,
	}
}
