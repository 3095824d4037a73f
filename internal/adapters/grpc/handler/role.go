package handler

import (
	"context"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/ogurasousui/talent-guard/internal/core/role"
	"google.golang.org/protobuf/types/known/structpb"
)

// CreateRole は職種カタログに職種を登録します。
func (h *CompensationGrpcHandler) CreateRole(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := newFields(req)

	name, err := f.str("name")
	if err != nil {
		return nil, invalidArgument(err)
	}
	level, err := f.str("level")
	if err != nil {
		return nil, invalidArgument(err)
	}

	created, err := h.roles.CreateRole(ctx, role.CreateRoleInput{Name: name, Level: compensation.Level(level)})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"role": roleToMap(created)})
}

// GetRole は職種を取得します。
func (h *CompensationGrpcHandler) GetRole(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := newFields(req).str("id")
	if err != nil {
		return nil, invalidArgument(err)
	}

	found, err := h.roles.GetRole(ctx, role.GetRoleInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"role": roleToMap(found)})
}

// ListRoles は職種の一覧を取得します。
func (h *CompensationGrpcHandler) ListRoles(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := newFields(req)

	level, err := f.optStr("level")
	if err != nil {
		return nil, invalidArgument(err)
	}
	var levelPtr *compensation.Level
	if level != nil {
		l := compensation.Level(*level)
		levelPtr = &l
	}
	pageSize, err := f.integer("page_size")
	if err != nil {
		return nil, invalidArgument(err)
	}
	pageToken, err := f.str("page_token")
	if err != nil {
		return nil, invalidArgument(err)
	}

	result, err := h.roles.ListRoles(ctx, role.ListRolesInput{
		Level:     levelPtr,
		PageSize:  pageSize,
		PageToken: pageToken,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	items := make([]any, 0, len(result.Roles))
	for _, r := range result.Roles {
		items = append(items, roleToMap(r))
	}
	return respond(map[string]any{
		"roles":           items,
		"next_page_token": result.NextPageToken,
	})
}

// UpdateRole は職種名または等級を変更します。
func (h *CompensationGrpcHandler) UpdateRole(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := newFields(req)

	id, err := f.str("id")
	if err != nil {
		return nil, invalidArgument(err)
	}
	in := role.UpdateRoleInput{ID: id}
	if in.Name, err = f.optStr("name"); err != nil {
		return nil, invalidArgument(err)
	}
	level, err := f.optStr("level")
	if err != nil {
		return nil, invalidArgument(err)
	}
	if level != nil {
		l := compensation.Level(*level)
		in.Level = &l
	}

	updated, err := h.roles.UpdateRole(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"role": roleToMap(updated)})
}

// DeleteRole は職種を削除します。
func (h *CompensationGrpcHandler) DeleteRole(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := newFields(req).str("id")
	if err != nil {
		return nil, invalidArgument(err)
	}

	if err := h.roles.DeleteRole(ctx, role.DeleteRoleInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{})
}

func roleToMap(r *role.Role) map[string]any {
	if r == nil {
		return nil
	}
	return map[string]any{
		"id":         r.ID,
		"name":       r.Name,
		"level":      string(r.Level),
		"created_at": formatTimestamp(r.CreatedAt),
		"updated_at": formatTimestamp(r.UpdatedAt),
	}
}
