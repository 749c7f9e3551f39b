package atomic

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/mwhitworth/stagehand/internal/jsonapi"
	"github.com/mwhitworth/stagehand/internal/schema"
	"github.com/mwhitworth/stagehand/internal/validation"
)

// Validator performs the structural and semantic checks every operation must
// pass before anything executes. Per-entry checks run in document order and
// fail on the first violation; the model-validation pass then collects rule
// violations from the whole batch into one report.
type Validator struct {
	registry *schema.Registry
}

// NewValidator returns a validator backed by the given schema registry.
func NewValidator(registry *schema.Registry) *Validator {
	return &Validator{registry: registry}
}

// ValidateOperations validates a parsed batch and returns its operation
// containers, ready for capability binding.
func (v *Validator) ValidateOperations(ops []jsonapi.Operation) ([]*OperationContainer, error) {
	containers := make([]*OperationContainer, 0, len(ops))
	for i, op := range ops {
		c, err := v.validateEntry(i, op)
		if err != nil {
			return nil, err
		}
		c.Index = i
		containers = append(containers, c)
	}
	if err := v.validateModels(containers); err != nil {
		return nil, err
	}
	return containers, nil
}

func (v *Validator) validateEntry(index int, op jsonapi.Operation) (*OperationContainer, error) {
	ptr := entryPointer(index)
	if op.Href != "" {
		return nil, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "Usage of the 'href' element is not supported.",
			Pointer: ptr + "/href",
		}
	}

	switch op.Op {
	case jsonapi.OpAdd:
		if op.Ref != nil {
			if op.Ref.Relationship == "" {
				return nil, &jsonapi.Error{
					Status:  http.StatusUnprocessableEntity,
					Title:   "The 'ref.relationship' element is required.",
					Detail:  "The ref.relationship element is required for 'add' operations that supply a 'ref' element.",
					Pointer: ptr + "/ref",
				}
			}
			return v.relationshipContainer(OpAddToRelationship, op, ptr)
		}
		return v.createContainer(op, ptr)
	case jsonapi.OpUpdate:
		if op.Ref != nil && op.Ref.Relationship != "" {
			return v.relationshipContainer(OpSetRelationship, op, ptr)
		}
		return v.updateContainer(op, ptr)
	case jsonapi.OpRemove:
		if op.Ref == nil {
			return nil, &jsonapi.Error{
				Status:  http.StatusUnprocessableEntity,
				Title:   "The 'ref' element is required.",
				Detail:  "The ref element is required for 'remove' operations.",
				Pointer: ptr,
			}
		}
		if op.Ref.Relationship != "" {
			return v.relationshipContainer(OpRemoveFromRelationship, op, ptr)
		}
		return v.deleteContainer(op, ptr)
	case "":
		return nil, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "The 'op' element is required.",
			Pointer: ptr,
		}
	default:
		return nil, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "Invalid 'op' element.",
			Detail:  fmt.Sprintf("Operation code '%s' is invalid.", op.Op),
			Pointer: ptr + "/op",
		}
	}
}

func (v *Validator) createContainer(op jsonapi.Operation, ptr string) (*OperationContainer, error) {
	obj, err := v.singleData(op.Data, ptr)
	if err != nil {
		return nil, err
	}
	return v.buildCreate(obj, ptr)
}

// buildCreate validates a create payload. It is shared with the
// single-resource create endpoint, which passes an empty pointer base.
func (v *Validator) buildCreate(obj *jsonapi.ResourceObject, ptr string) (*OperationContainer, error) {
	dataPtr := ptr + "/data"
	rt, err := v.payloadType(obj.Type, dataPtr)
	if err != nil {
		return nil, err
	}
	if obj.ID != "" && obj.LID != "" {
		return nil, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "The 'id' and 'lid' element are mutually exclusive.",
			Pointer: dataPtr,
		}
	}

	var canonicalID string
	if obj.ID != "" {
		if !rt.ClientIDs {
			return nil, &jsonapi.Error{
				Status:  http.StatusForbidden,
				Title:   "The use of client-generated IDs is disabled.",
				Detail:  fmt.Sprintf("Resource type '%s' does not allow client-generated IDs.", rt.Name),
				Pointer: dataPtr + "/id",
			}
		}
		canonicalID, err = v.parseID(rt, obj.ID, dataPtr+"/id")
		if err != nil {
			return nil, err
		}
	}

	attrs, rels, fields, err := v.validateFields(rt, obj, schema.CapCreate, dataPtr)
	if err != nil {
		return nil, err
	}

	return &OperationContainer{
		Kind: OpCreateResource,
		Type: rt,
		Subject: &Resource{
			Type:          rt.Name,
			ID:            canonicalID,
			LID:           obj.LID,
			Attributes:    attrs,
			Relationships: rels,
		},
		Fields: fields,
		ptr:    ptr,
	}, nil
}

func (v *Validator) updateContainer(op jsonapi.Operation, ptr string) (*OperationContainer, error) {
	obj, err := v.singleData(op.Data, ptr)
	if err != nil {
		return nil, err
	}
	dataPtr := ptr + "/data"
	rt, err := v.payloadType(obj.Type, dataPtr)
	if err != nil {
		return nil, err
	}

	var subject Reference
	if op.Ref != nil {
		refType, refSubject, err := v.validateRef(op.Ref, ptr)
		if err != nil {
			return nil, err
		}
		if refType.Name != rt.Name {
			return nil, &jsonapi.Error{
				Status:  http.StatusConflict,
				Title:   "Resource type mismatch between 'ref.type' and 'data.type' element.",
				Detail:  fmt.Sprintf("Expected resource of type '%s', instead of '%s'.", refType.Name, rt.Name),
				Pointer: dataPtr + "/type",
			}
		}
		if obj.ID != "" {
			canonical, err := v.parseID(rt, obj.ID, dataPtr+"/id")
			if err != nil {
				return nil, err
			}
			if canonical != refSubject.ID {
				return nil, &jsonapi.Error{
					Status:  http.StatusConflict,
					Title:   "Resource ID mismatch between 'ref.id' and 'data.id' element.",
					Detail:  fmt.Sprintf("Expected resource with ID '%s', instead of '%s'.", refSubject.ID, canonical),
					Pointer: dataPtr + "/id",
				}
			}
		}
		if obj.LID != "" && obj.LID != refSubject.LID {
			return nil, &jsonapi.Error{
				Status:  http.StatusConflict,
				Title:   "Resource local ID mismatch between 'ref.lid' and 'data.lid' element.",
				Detail:  fmt.Sprintf("Expected resource with local ID '%s', instead of '%s'.", refSubject.LID, obj.LID),
				Pointer: dataPtr + "/lid",
			}
		}
		subject = refSubject
	} else {
		subject, err = v.validateIdentity(rt, obj.ID, obj.LID, dataPtr)
		if err != nil {
			return nil, err
		}
	}

	attrs, rels, fields, err := v.validateFields(rt, obj, schema.CapUpdate, dataPtr)
	if err != nil {
		return nil, err
	}

	return &OperationContainer{
		Kind: OpUpdateResource,
		Type: rt,
		Subject: &Resource{
			Type:          rt.Name,
			ID:            subject.ID,
			LID:           subject.LID,
			Attributes:    attrs,
			Relationships: rels,
		},
		Fields: fields,
		ptr:    ptr,
	}, nil
}

func (v *Validator) deleteContainer(op jsonapi.Operation, ptr string) (*OperationContainer, error) {
	rt, subject, err := v.validateRef(op.Ref, ptr)
	if err != nil {
		return nil, err
	}
	return &OperationContainer{
		Kind:    OpDeleteResource,
		Type:    rt,
		Subject: &Resource{Type: rt.Name, ID: subject.ID, LID: subject.LID},
		ptr:     ptr,
	}, nil
}

func (v *Validator) relationshipContainer(kind OperationKind, op jsonapi.Operation, ptr string) (*OperationContainer, error) {
	rt, subject, err := v.validateRef(op.Ref, ptr)
	if err != nil {
		return nil, err
	}
	rel, ok := rt.Relationship(op.Ref.Relationship)
	if !ok {
		return nil, v.unknownRelationship(rt.Name, op.Ref.Relationship, ptr+"/ref/relationship")
	}
	if rel.Kind == schema.ToOne && kind != OpSetRelationship {
		return nil, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "Only to-many relationships can be targeted through this operation.",
			Detail:  fmt.Sprintf("Relationship '%s' on resource type '%s' is a to-one relationship.", rel.Name, rt.Name),
			Pointer: ptr + "/ref/relationship",
		}
	}
	target, ok := v.registry.ResolveByName(rel.Target)
	if !ok {
		return nil, v.unknownType(rel.Target, ptr+"/ref/relationship")
	}

	if op.Data == nil {
		return nil, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "The 'data' element is required.",
			Pointer: ptr,
		}
	}
	pd, err := jsonapi.DecodePrimaryData(op.Data)
	if err != nil {
		return nil, &jsonapi.Error{
			Status:  http.StatusBadRequest,
			Title:   "Failed to deserialize request body.",
			Detail:  err.Error(),
			Pointer: ptr + "/data",
		}
	}
	payload, err := v.linkageFromPrimaryData(rel, target, pd, ptr+"/data")
	if err != nil {
		return nil, err
	}

	relCopy := rel
	return &OperationContainer{
		Kind:         kind,
		Type:         rt,
		Relationship: &relCopy,
		Secondary:    target,
		Subject:      &Resource{Type: rt.Name, ID: subject.ID, LID: subject.LID},
		Payload:      payload,
		ptr:          ptr,
	}, nil
}

// ValidateResourceCreate checks a create request submitted to a collection
// endpoint. Local ids carry no meaning outside a batch and are rejected.
func (v *Validator) ValidateResourceCreate(typeName string, data json.RawMessage) (*OperationContainer, error) {
	obj, err := v.singleData(data, "")
	if err != nil {
		return nil, err
	}
	if obj.Type != "" && obj.Type != typeName {
		return nil, v.endpointTypeMismatch(typeName, obj.Type)
	}
	if obj.LID != "" {
		return nil, v.lidOutsideBatch()
	}
	c, err := v.buildCreate(obj, "")
	if err != nil {
		return nil, err
	}
	if err := v.validateModels([]*OperationContainer{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// ValidateResourceUpdate checks an update request submitted to a resource
// endpoint. The subject identity comes from the URL; the body, when it
// carries type or id, must agree with it.
func (v *Validator) ValidateResourceUpdate(typeName, id string, data json.RawMessage) (*OperationContainer, error) {
	obj, err := v.singleData(data, "")
	if err != nil {
		return nil, err
	}
	if obj.Type != "" && obj.Type != typeName {
		return nil, v.endpointTypeMismatch(typeName, obj.Type)
	}
	if obj.LID != "" {
		return nil, v.lidOutsideBatch()
	}
	rt, ok := v.registry.ResolveByName(typeName)
	if !ok {
		return nil, v.unknownType(typeName, "")
	}
	canonical, err := v.parseID(rt, id, "")
	if err != nil {
		return nil, err
	}
	if obj.ID != "" {
		bodyID, err := v.parseID(rt, obj.ID, "/data/id")
		if err != nil {
			return nil, err
		}
		if bodyID != canonical {
			return nil, &jsonapi.Error{
				Status:  http.StatusConflict,
				Title:   "Resource ID mismatch between request body and endpoint.",
				Detail:  fmt.Sprintf("Expected resource with ID '%s', instead of '%s'.", canonical, bodyID),
				Pointer: "/data/id",
			}
		}
	}

	attrs, rels, fields, err := v.validateFields(rt, obj, schema.CapUpdate, "/data")
	if err != nil {
		return nil, err
	}
	c := &OperationContainer{
		Kind: OpUpdateResource,
		Type: rt,
		Subject: &Resource{
			Type:          rt.Name,
			ID:            canonical,
			Attributes:    attrs,
			Relationships: rels,
		},
		Fields: fields,
	}
	if err := v.validateModels([]*OperationContainer{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// ValidateRelationshipChange checks a request submitted to a relationship
// endpoint: add and remove target to-many relationships only, set accepts
// whatever matches the relationship's arity.
func (v *Validator) ValidateRelationshipChange(kind OperationKind, typeName, id, relName string, body *jsonapi.RelationshipObject) (*OperationContainer, error) {
	rt, ok := v.registry.ResolveByName(typeName)
	if !ok {
		return nil, v.unknownType(typeName, "")
	}
	rel, ok := rt.Relationship(relName)
	if !ok {
		return nil, v.unknownRelationship(rt.Name, relName, "")
	}
	if rel.Kind == schema.ToOne && kind != OpSetRelationship {
		return nil, &jsonapi.Error{
			Status: http.StatusUnprocessableEntity,
			Title:  "Only to-many relationships can be targeted through this operation.",
			Detail: fmt.Sprintf("Relationship '%s' on resource type '%s' is a to-one relationship.", rel.Name, rt.Name),
		}
	}
	canonical, err := v.parseID(rt, id, "")
	if err != nil {
		return nil, err
	}
	if body == nil || !body.HasData {
		return nil, &jsonapi.Error{
			Status: http.StatusUnprocessableEntity,
			Title:  "The 'data' element is required.",
		}
	}
	target, ok := v.registry.ResolveByName(rel.Target)
	if !ok {
		return nil, v.unknownType(rel.Target, "")
	}
	payload, err := v.relationshipData(rel, target, body.Data, "/data")
	if err != nil {
		return nil, err
	}

	relCopy := rel
	return &OperationContainer{
		Kind:         kind,
		Type:         rt,
		Relationship: &relCopy,
		Secondary:    target,
		Subject:      &Resource{Type: rt.Name, ID: canonical},
		Payload:      payload,
	}, nil
}

// ParseID checks a raw id against the type's identity kind and returns its
// canonical form. The error detail carries the conversion failure.
func (v *Validator) ParseID(rt *schema.ResourceType, id string) (string, error) {
	return v.parseID(rt, id, "")
}

// ResolveRelationship looks up the named relationship with the same failure
// vocabulary as operation validation.
func (v *Validator) ResolveRelationship(rt *schema.ResourceType, relName string) (*schema.Relationship, error) {
	rel, ok := rt.Relationship(relName)
	if !ok {
		return nil, v.unknownRelationship(rt.Name, relName, "")
	}
	relCopy := rel
	return &relCopy, nil
}

// validateRef checks the common ref element: type, exactly one of id/lid,
// and id well-formedness.
func (v *Validator) validateRef(ref *jsonapi.Ref, ptr string) (*schema.ResourceType, Reference, error) {
	refPtr := ptr + "/ref"
	if ref.Type == "" {
		return nil, Reference{}, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "The 'type' element is required.",
			Pointer: refPtr,
		}
	}
	rt, ok := v.registry.ResolveByName(ref.Type)
	if !ok {
		return nil, Reference{}, v.unknownType(ref.Type, refPtr+"/type")
	}
	subject, err := v.validateIdentity(rt, ref.ID, ref.LID, refPtr)
	if err != nil {
		return nil, Reference{}, err
	}
	return rt, subject, nil
}

// validateIdentity checks that exactly one of id and lid is supplied and
// canonicalizes the id when present.
func (v *Validator) validateIdentity(rt *schema.ResourceType, id, lid, ptr string) (Reference, error) {
	if id == "" && lid == "" {
		return Reference{}, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "The 'id' or 'lid' element is required.",
			Pointer: ptr,
		}
	}
	if id != "" && lid != "" {
		return Reference{}, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "The 'id' and 'lid' element are mutually exclusive.",
			Pointer: ptr,
		}
	}
	out := Reference{Type: rt.Name, LID: lid}
	if id != "" {
		canonical, err := v.parseID(rt, id, ptr+"/id")
		if err != nil {
			return Reference{}, err
		}
		out.ID = canonical
	}
	return out, nil
}

func (v *Validator) parseID(rt *schema.ResourceType, id, ptr string) (string, error) {
	canonical, err := rt.IDKind.ParseID(id)
	if err != nil {
		return "", &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "Incompatible 'id' value.",
			Detail:  fmt.Sprintf("ID '%s' is invalid for resource type '%s': %v.", id, rt.Name, err),
			Pointer: ptr,
		}
	}
	return canonical, nil
}

// singleData decodes the data element of a resource operation, which must be
// present and hold exactly one resource object.
func (v *Validator) singleData(raw json.RawMessage, ptr string) (*jsonapi.ResourceObject, error) {
	if raw == nil {
		return nil, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "The 'data' element is required.",
			Pointer: ptr,
		}
	}
	pd, err := jsonapi.DecodePrimaryData(raw)
	if err != nil {
		return nil, &jsonapi.Error{
			Status:  http.StatusBadRequest,
			Title:   "Failed to deserialize request body.",
			Detail:  err.Error(),
			Pointer: ptr + "/data",
		}
	}
	if pd.Many {
		return nil, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "Expected a single resource object in 'data' element.",
			Detail:  "Expected an object in 'data' element, instead of an array.",
			Pointer: ptr + "/data",
		}
	}
	if pd.One == nil {
		return nil, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "Expected a single resource object in 'data' element.",
			Detail:  "Expected an object in 'data' element, instead of 'null'.",
			Pointer: ptr + "/data",
		}
	}
	return pd.One, nil
}

func (v *Validator) payloadType(name, dataPtr string) (*schema.ResourceType, error) {
	if name == "" {
		return nil, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "The 'type' element is required.",
			Pointer: dataPtr,
		}
	}
	rt, ok := v.registry.ResolveByName(name)
	if !ok {
		return nil, v.unknownType(name, dataPtr+"/type")
	}
	return rt, nil
}

// validateFields walks the attributes and relationships a payload supplies,
// checking each against the type's declared fields and capability flags, and
// accumulates the targeted-fields set. Names are visited in sorted order so
// the first reported violation is deterministic.
func (v *Validator) validateFields(rt *schema.ResourceType, obj *jsonapi.ResourceObject, mode schema.FieldCaps, dataPtr string) (map[string]any, map[string]Linkage, TargetedFields, error) {
	var fields TargetedFields

	attrs := make(map[string]any, len(obj.Attributes))
	for _, name := range sortedKeys(obj.Attributes) {
		attr, ok := rt.Attribute(name)
		if !ok {
			return nil, nil, TargetedFields{}, &jsonapi.Error{
				Status:  http.StatusUnprocessableEntity,
				Title:   "Unknown attribute found.",
				Detail:  fmt.Sprintf("Attribute '%s' does not exist on resource type '%s'.", name, rt.Name),
				Pointer: dataPtr + "/attributes/" + name,
			}
		}
		if !attr.Caps.Has(mode) {
			return nil, nil, TargetedFields{}, v.fieldCapError("attribute", name, mode, dataPtr+"/attributes/"+name)
		}
		attrs[name] = obj.Attributes[name]
		fields.Attributes = append(fields.Attributes, name)
	}

	rels := make(map[string]Linkage, len(obj.Relationships))
	for _, name := range sortedKeys(obj.Relationships) {
		rel, ok := rt.Relationship(name)
		if !ok {
			return nil, nil, TargetedFields{}, v.unknownRelationship(rt.Name, name, dataPtr+"/relationships/"+name)
		}
		if !rel.Caps.Has(mode) {
			return nil, nil, TargetedFields{}, v.fieldCapError("relationship", name, mode, dataPtr+"/relationships/"+name)
		}
		robj := obj.Relationships[name]
		if !robj.HasData {
			return nil, nil, TargetedFields{}, &jsonapi.Error{
				Status:  http.StatusUnprocessableEntity,
				Title:   "The 'data' element is required.",
				Pointer: dataPtr + "/relationships/" + name,
			}
		}
		target, ok := v.registry.ResolveByName(rel.Target)
		if !ok {
			return nil, nil, TargetedFields{}, v.unknownType(rel.Target, dataPtr+"/relationships/"+name)
		}
		linkage, err := v.relationshipData(rel, target, robj.Data, dataPtr+"/relationships/"+name+"/data")
		if err != nil {
			return nil, nil, TargetedFields{}, err
		}
		rels[name] = linkage
		fields.Relationships = append(fields.Relationships, name)
	}

	return attrs, rels, fields, nil
}

// relationshipData checks linkage data against the relationship's arity and
// validates every identifier it carries.
func (v *Validator) relationshipData(rel schema.Relationship, target *schema.ResourceType, data jsonapi.RelationshipData, ptr string) (Linkage, error) {
	if rel.Kind == schema.ToMany {
		if !data.Many {
			return Linkage{}, v.cardinalityManyError(rel.Name, ptr)
		}
		refs := make([]Reference, 0, len(data.Items))
		for _, item := range data.Items {
			ref, err := v.payloadIdentifier(rel, target, item.Type, item.ID, item.LID, ptr)
			if err != nil {
				return Linkage{}, err
			}
			refs = append(refs, ref)
		}
		return Linkage{Many: true, Refs: refs}, nil
	}

	if data.Many {
		return Linkage{}, v.cardinalityOneError(rel.Name, ptr)
	}
	if data.One == nil {
		// Explicit null clears a to-one link.
		return Linkage{}, nil
	}
	ref, err := v.payloadIdentifier(rel, target, data.One.Type, data.One.ID, data.One.LID, ptr)
	if err != nil {
		return Linkage{}, err
	}
	return Linkage{Refs: []Reference{ref}}, nil
}

// linkageFromPrimaryData adapts the data element of a relationship operation
// into linkage form before identifier validation.
func (v *Validator) linkageFromPrimaryData(rel schema.Relationship, target *schema.ResourceType, pd jsonapi.PrimaryData, ptr string) (Linkage, error) {
	data := jsonapi.RelationshipData{Many: pd.Many}
	if pd.Many {
		data.Items = make([]jsonapi.ResourceIdentifier, 0, len(pd.Items))
		for _, item := range pd.Items {
			data.Items = append(data.Items, jsonapi.ResourceIdentifier{Type: item.Type, ID: item.ID, LID: item.LID})
		}
	} else if pd.One != nil {
		data.One = &jsonapi.ResourceIdentifier{Type: pd.One.Type, ID: pd.One.ID, LID: pd.One.LID}
	}
	return v.relationshipData(rel, target, data, ptr)
}

// payloadIdentifier validates one resource identifier inside relationship
// data: known type, assignable to the declared target, exactly one of
// id/lid, and a well-formed id.
func (v *Validator) payloadIdentifier(rel schema.Relationship, target *schema.ResourceType, typeName, id, lid, ptr string) (Reference, error) {
	if typeName == "" {
		return Reference{}, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "The 'type' element is required.",
			Pointer: ptr,
		}
	}
	if _, ok := v.registry.ResolveByName(typeName); !ok {
		return Reference{}, v.unknownType(typeName, ptr)
	}
	if typeName != rel.Target {
		return Reference{}, &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   "Incompatible resource type found.",
			Detail:  fmt.Sprintf("Expected resource of type '%s' in relationship '%s', instead of '%s'.", rel.Target, rel.Name, typeName),
			Pointer: ptr,
		}
	}
	return v.validateIdentity(target, id, lid, ptr)
}

// validateModels runs the declarative field rules over every create and
// update in the batch and aggregates all violations into one report.
func (v *Validator) validateModels(containers []*OperationContainer) error {
	list := &jsonapi.ErrorList{}
	for _, c := range containers {
		if c.Kind != OpCreateResource && c.Kind != OpUpdateResource {
			continue
		}
		creating := c.Kind == OpCreateResource
		for _, violation := range validation.Resource(c.Type, c.Subject.Attributes, creating) {
			list.Errors = append(list.Errors, &jsonapi.Error{
				Status:  http.StatusUnprocessableEntity,
				Title:   "Input validation failed.",
				Detail:  violation.Detail,
				Pointer: c.ptr + "/data/attributes/" + violation.Attribute,
			})
		}
	}
	if len(list.Errors) > 0 {
		return list
	}
	return nil
}

func (v *Validator) unknownType(name, ptr string) error {
	return &jsonapi.Error{
		Status:  http.StatusNotFound,
		Title:   "Request body includes unknown resource type.",
		Detail:  fmt.Sprintf("Resource type '%s' does not exist.", name),
		Pointer: ptr,
	}
}

func (v *Validator) unknownRelationship(typeName, relName, ptr string) error {
	return &jsonapi.Error{
		Status:  http.StatusNotFound,
		Title:   "The referenced relationship does not exist.",
		Detail:  fmt.Sprintf("Resource of type '%s' does not contain a relationship named '%s'.", typeName, relName),
		Pointer: ptr,
	}
}

func (v *Validator) fieldCapError(fieldKind, name string, mode schema.FieldCaps, ptr string) error {
	if mode.Has(schema.CapCreate) {
		return &jsonapi.Error{
			Status:  http.StatusUnprocessableEntity,
			Title:   fmt.Sprintf("Setting the initial value of the requested %s is not allowed.", fieldKind),
			Detail:  fmt.Sprintf("Setting the initial value of '%s' is not allowed.", name),
			Pointer: ptr,
		}
	}
	return &jsonapi.Error{
		Status:  http.StatusUnprocessableEntity,
		Title:   fmt.Sprintf("Changing the value of the requested %s is not allowed.", fieldKind),
		Detail:  fmt.Sprintf("Changing the value of '%s' is not allowed.", name),
		Pointer: ptr,
	}
}

func (v *Validator) cardinalityManyError(name, ptr string) error {
	return &jsonapi.Error{
		Status:  http.StatusUnprocessableEntity,
		Title:   "Relationship cardinality mismatch.",
		Detail:  fmt.Sprintf("Expected data[] element for '%s' relationship.", name),
		Pointer: ptr,
	}
}

func (v *Validator) cardinalityOneError(name, ptr string) error {
	return &jsonapi.Error{
		Status:  http.StatusUnprocessableEntity,
		Title:   "Relationship cardinality mismatch.",
		Detail:  fmt.Sprintf("Expected single data element for '%s' relationship.", name),
		Pointer: ptr,
	}
}

func (v *Validator) endpointTypeMismatch(expected, actual string) error {
	return &jsonapi.Error{
		Status:  http.StatusConflict,
		Title:   "Resource type mismatch between request body and endpoint.",
		Detail:  fmt.Sprintf("Expected resource of type '%s', instead of '%s'.", expected, actual),
		Pointer: "/data/type",
	}
}

func (v *Validator) lidOutsideBatch() error {
	return &jsonapi.Error{
		Status:  http.StatusUnprocessableEntity,
		Title:   "The 'lid' element is not supported at this endpoint.",
		Detail:  "Local IDs can only be used within an atomic:operations request.",
		Pointer: "/data/lid",
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
