package store

import (
	"context"
	"net/url"
	"strings"

	"scrumbringer-admin/internal/model"

	"github.com/google/uuid"
)

func inviteKey(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (b *Backend) inviteURL(token string) string {
	return b.baseURL + "/accept-invite?token=" + url.QueryEscape(token)
}

func (b *Backend) ListInvites(ctx context.Context) ([]model.InviteLink, error) {
	var out []model.InviteLink
	err := b.read(ctx, func(q querier) error {
		if _, err := requireAdmin(ctx, q); err != nil {
			return err
		}
		var err error
		out, err = listAll[model.InviteLink](ctx, q, kindInvite)
		return err
	})
	return out, err
}

// CreateInvite issues an invite link for email. An existing link for the
// same email is replaced; an email that already belongs to a user is a 409.
func (b *Backend) CreateInvite(ctx context.Context, email string) (model.InviteLink, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return model.InviteLink{}, invalid("email is invalid")
	}
	var out model.InviteLink
	err := b.write(ctx, func(q querier) error {
		if _, err := requireAdmin(ctx, q); err != nil {
			return err
		}
		if _, err := userByEmail(ctx, q, email); err == nil {
			return conflict("user_exists", "user already exists")
		}
		var id int64
		prev, err := get[model.InviteLink](ctx, q, kindInvite, inviteKey(email))
		if err == nil {
			id, err = rowID(ctx, q, kindInvite, inviteKey(prev.Email))
		} else {
			id, err = nextID(ctx, q, kindInvite)
		}
		if err != nil {
			return err
		}
		out = b.newInvite(email)
		return b.put(ctx, q, kindInvite, inviteKey(email), id, 0, out)
	})
	return out, err
}

// RegenerateInvite replaces the token of an existing link, invalidating the
// old one.
func (b *Backend) RegenerateInvite(ctx context.Context, email string) (model.InviteLink, error) {
	var out model.InviteLink
	err := b.write(ctx, func(q querier) error {
		if _, err := requireAdmin(ctx, q); err != nil {
			return err
		}
		key := inviteKey(email)
		prev, err := get[model.InviteLink](ctx, q, kindInvite, key)
		if err != nil {
			return err
		}
		id, err := rowID(ctx, q, kindInvite, key)
		if err != nil {
			return err
		}
		out = b.newInvite(prev.Email)
		return b.put(ctx, q, kindInvite, key, id, 0, out)
	})
	return out, err
}

func (b *Backend) newInvite(email string) model.InviteLink {
	token := uuid.NewString()
	return model.InviteLink{
		Email:     email,
		Token:     token,
		URL:       b.inviteURL(token),
		State:     model.InviteActive,
		CreatedAt: b.now(),
	}
}

func rowID(ctx context.Context, q querier, kind, key string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM entities WHERE kind = ? AND key = ?`, kind, key).Scan(&id)
	return id, err
}
