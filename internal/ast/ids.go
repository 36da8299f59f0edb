package ast

type (
	FileID      uint32
	DeclID      uint32
	TypeRefID   uint32
	ExprID      uint32
	ImportID    uint32
	ParamID     uint32
	TypeParamID uint32
	PayloadID   uint32
)

const (
	NoFileID      FileID      = 0
	NoDeclID      DeclID      = 0
	NoTypeRefID   TypeRefID   = 0
	NoExprID      ExprID      = 0
	NoImportID    ImportID    = 0
	NoParamID     ParamID     = 0
	NoTypeParamID TypeParamID = 0
	NoPayloadID   PayloadID   = 0
)

func (id FileID) IsValid() bool      { return id != NoFileID }
func (id DeclID) IsValid() bool      { return id != NoDeclID }
func (id TypeRefID) IsValid() bool   { return id != NoTypeRefID }
func (id ExprID) IsValid() bool      { return id != NoExprID }
func (id ImportID) IsValid() bool    { return id != NoImportID }
func (id ParamID) IsValid() bool     { return id != NoParamID }
func (id TypeParamID) IsValid() bool { return id != NoTypeParamID }
func (id PayloadID) IsValid() bool   { return id != NoPayloadID }

// NodeKind tags a NodeRef.
type NodeKind uint8

const (
	NodeNone NodeKind = iota
	NodeFile
	NodeDecl
	NodeTypeRef
	NodeExpr
	NodeImport
	NodeParam
	NodeTypeParam
)

func (k NodeKind) String() string {
	switch k {
	case NodeFile:
		return "file"
	case NodeDecl:
		return "decl"
	case NodeTypeRef:
		return "typeref"
	case NodeExpr:
		return "expr"
	case NodeImport:
		return "import"
	case NodeParam:
		return "param"
	case NodeTypeParam:
		return "typeparam"
	default:
		return "none"
	}
}

// NodeRef names any node of the tree; it is comparable and usable as a map key.
type NodeRef struct {
	Kind NodeKind
	ID   uint32
}

func (r NodeRef) IsValid() bool { return r.Kind != NodeNone && r.ID != 0 }

func FileRef(id FileID) NodeRef           { return NodeRef{Kind: NodeFile, ID: uint32(id)} }
func DeclRef(id DeclID) NodeRef           { return NodeRef{Kind: NodeDecl, ID: uint32(id)} }
func TypeRefRef(id TypeRefID) NodeRef     { return NodeRef{Kind: NodeTypeRef, ID: uint32(id)} }
func ExprRef(id ExprID) NodeRef           { return NodeRef{Kind: NodeExpr, ID: uint32(id)} }
func ImportRef(id ImportID) NodeRef       { return NodeRef{Kind: NodeImport, ID: uint32(id)} }
func ParamRef(id ParamID) NodeRef         { return NodeRef{Kind: NodeParam, ID: uint32(id)} }
func TypeParamRef(id TypeParamID) NodeRef { return NodeRef{Kind: NodeTypeParam, ID: uint32(id)} }
