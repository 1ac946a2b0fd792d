package cmplane

// ObjectKind identifies one category of content-bearing object on the site.
type ObjectKind string

const (
	KindDriver          ObjectKind = "Driver"
	KindDriverPackage   ObjectKind = "DriverPackage"
	KindUpdatePackage   ObjectKind = "UpdatePackage"
	KindStandardPackage ObjectKind = "StandardPackage"
	KindApplication     ObjectKind = "Application"
	KindOSImage         ObjectKind = "OSImage"
)

// ContentKinds lists every kind that records a content source path, in the
// order the remap run processes them.
var ContentKinds = []ObjectKind{
	KindDriver,
	KindDriverPackage,
	KindUpdatePackage,
	KindStandardPackage,
	KindApplication,
	KindOSImage,
}

// classInfo maps a kind onto its provider class and the properties the tool
// reads and writes.
type classInfo struct {
	ClassName    string
	KeyProperty  string
	NameProperty string
	PathProperty string
}

var classes = map[ObjectKind]classInfo{
	KindDriver:          {"SMS_Driver", "CI_ID", "LocalizedDisplayName", "ContentSourcePath"},
	KindDriverPackage:   {"SMS_DriverPackage", "PackageID", "Name", "PkgSourcePath"},
	KindUpdatePackage:   {"SMS_SoftwareUpdatesPackage", "PackageID", "Name", "PkgSourcePath"},
	KindStandardPackage: {"SMS_Package", "PackageID", "Name", "PkgSourcePath"},
	KindApplication:     {"SMS_Application", "CI_ID", "LocalizedDisplayName", "SDMPackageXML"},
	KindOSImage:         {"SMS_ImagePackage", "PackageID", "Name", "PkgSourcePath"},
}

// ObjectRecord is one enumerated content-bearing object.
//
// For every kind except Application, SourcePath holds the single recorded
// content location. For Application the locations live inside Digest, the raw
// installer-content document, and SourcePath is empty.
type ObjectRecord struct {
	Kind       ObjectKind
	ID         string
	Name       string
	SourcePath string
	Digest     []byte
}

// Identity returns the display form used in reports and errors.
func (r ObjectRecord) Identity() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// ApplicationSpec describes an application to register.
type ApplicationSpec struct {
	Name            string
	Publisher       string
	Version         string
	InstallCommand  string
	ContentLocation string
	// Technology selects the deployment technology: "Script" for a native
	// installer, "AppV" for a virtualized one.
	Technology string
}

// CollectionSpec describes a device collection and its membership.
type CollectionSpec struct {
	Name               string
	LimitingCollection string
	// QueryExpression is the WQL membership rule; empty means a direct-only
	// collection.
	QueryExpression string
}

// DeploymentSpec targets an application at a collection.
type DeploymentSpec struct {
	ApplicationID string
	CollectionID  string
	// Action is "Install" or "Uninstall"; Purpose is "Required" or
	// "Available".
	Action  string
	Purpose string
}
