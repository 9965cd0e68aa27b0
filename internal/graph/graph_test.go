package graph

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minitwitql/internal/account"
	"minitwitql/internal/auth"
	"minitwitql/internal/store/memory"
	"minitwitql/internal/timeline"
)

type fixture struct {
	api    *graphql.Schema
	login  *graphql.Schema
	tokens *auth.Tokens
	store  *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	tokens := auth.NewTokens("test-secret", time.Hour)
	accounts, err := account.New(st.Users(), tokens, nil)
	require.NoError(t, err)
	messages := timeline.New(st.Messages(), st.Users(), nil)

	api, err := NewAPISchema(accounts, messages, nil)
	require.NoError(t, err)
	login, err := NewLoginSchema(accounts, nil)
	require.NoError(t, err)
	return &fixture{api: api, login: login, tokens: tokens, store: st}
}

// exec runs query and decodes data into out. It returns the error entries.
func exec(t *testing.T, s *graphql.Schema, query string, vars map[string]interface{}, out interface{}) []map[string]interface{} {
	t.Helper()
	resp := s.Exec(context.Background(), query, "", vars)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var envelope struct {
		Data   json.RawMessage          `json:"data"`
		Errors []map[string]interface{} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	if out != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope.Errors
}

type pageData struct {
	Data []struct {
		ID     string `json:"id"`
		Text   string `json:"text"`
		UserID string `json:"userId"`
		Date   string `json:"date"`
	} `json:"data"`
	Cursor string `json:"cursor"`
}

func TestAddMessageThenMessagesByUserID(t *testing.T) {
	f := newFixture(t)

	var added struct {
		AddMessage struct {
			ID   string `json:"id"`
			Date string `json:"date"`
		} `json:"addMessage"`
	}
	errs := exec(t, f.api, `mutation { addMessage(text: "hi", userId: "u1") { id date } }`, nil, &added)
	require.Empty(t, errs)

	var got struct {
		MessagesByUserID pageData `json:"messagesByUserId"`
	}
	errs = exec(t, f.api, `query($id: String!) { messagesByUserId(id: $id) { data { id text userId date } cursor } }`,
		map[string]interface{}{"id": "u1"}, &got)
	require.Empty(t, errs)

	page := got.MessagesByUserID
	require.Len(t, page.Data, 1)
	assert.Equal(t, "hi", page.Data[0].Text)
	assert.Equal(t, "u1", page.Data[0].UserID)
	assert.Equal(t, added.AddMessage.Date, page.Cursor)
	assert.Equal(t, added.AddMessage.ID, page.Data[0].ID)
}

func TestPagingThroughMessages(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 7; i++ {
		errs := exec(t, f.api, `mutation { addMessage(text: "t", userId: "u1") { id } }`, nil, nil)
		require.Empty(t, errs)
	}

	var first struct {
		Messages pageData `json:"messages"`
	}
	require.Empty(t, exec(t, f.api, `{ messages { data { id date } cursor } }`, nil, &first))
	require.Len(t, first.Messages.Data, timeline.PageSize)

	var more struct {
		MoreMessages pageData `json:"moreMessages"`
	}
	require.Empty(t, exec(t, f.api, `query($c: String!) { moreMessages(cursor: $c) { data { id date } cursor } }`,
		map[string]interface{}{"c": first.Messages.Cursor}, &more))
	require.Len(t, more.MoreMessages.Data, 2)
	assert.Greater(t, more.MoreMessages.Data[0].Date, first.Messages.Cursor)

	var empty struct {
		MoreMessages pageData `json:"moreMessages"`
	}
	require.Empty(t, exec(t, f.api, `query($c: String!) { moreMessages(cursor: $c) { data { id } cursor } }`,
		map[string]interface{}{"c": more.MoreMessages.Cursor}, &empty))
	assert.Empty(t, empty.MoreMessages.Data)
	assert.Equal(t, "", empty.MoreMessages.Cursor)
}

func TestUserRelations(t *testing.T) {
	f := newFixture(t)

	var reg struct {
		AddUser struct {
			ID       string `json:"id"`
			Password string `json:"password"`
		} `json:"addUser"`
	}
	require.Empty(t, exec(t, f.login,
		`mutation { addUser(name: "Foo", email: "foo@example.com", password: "default") { id password } }`, nil, &reg))
	assert.NotEqual(t, "default", reg.AddUser.Password)
	uid := reg.AddUser.ID

	for i := 0; i < 6; i++ {
		require.Empty(t, exec(t, f.api, `mutation($u: String!) { addMessage(text: "m", userId: $u) { id } }`,
			map[string]interface{}{"u": uid}, nil))
	}

	var got struct {
		UserByEmail struct {
			Name     string   `json:"name"`
			Messages pageData `json:"messages"`
		} `json:"userByEmail"`
	}
	require.Empty(t, exec(t, f.api,
		`{ userByEmail(email: "foo@example.com") { name messages { data { id userId } cursor } } }`, nil, &got))
	assert.Equal(t, "Foo", got.UserByEmail.Name)
	require.Len(t, got.UserByEmail.Messages.Data, timeline.PageSize)

	var more struct {
		User struct {
			MoreMessages pageData `json:"moreMessages"`
		} `json:"user"`
	}
	require.Empty(t, exec(t, f.api,
		`query($id: String!, $c: String!) { user(id: $id) { moreMessages(cursor: $c) { data { id userId } } } }`,
		map[string]interface{}{"id": uid, "c": got.UserByEmail.Messages.Cursor}, &more))
	require.Len(t, more.User.MoreMessages.Data, 1)

	var withAuthor struct {
		Messages struct {
			Data []struct {
				User struct {
					Email string `json:"email"`
				} `json:"user"`
			} `json:"data"`
		} `json:"messages"`
	}
	require.Empty(t, exec(t, f.api, `{ messages { data { user { email } } } }`, nil, &withAuthor))
	require.NotEmpty(t, withAuthor.Messages.Data)
	assert.Equal(t, "foo@example.com", withAuthor.Messages.Data[0].User.Email)
}

func TestNotFoundErrorsCarryCode(t *testing.T) {
	f := newFixture(t)

	errs := exec(t, f.api, `{ user(id: "ghost") { id } }`, nil, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "User with id ghost not found", errs[0]["message"])
	ext, ok := errs[0]["extensions"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", ext["code"])
	assert.Equal(t, "ghost", ext["key"])

	require.Empty(t, exec(t, f.api, `mutation { addMessage(text: "orphan", userId: "ghost") { id } }`, nil, nil))
	errs = exec(t, f.api, `{ messages { data { user { id } } } }`, nil, nil)
	require.NotEmpty(t, errs)
	assert.Equal(t, "User with id ghost not found", errs[0]["message"])
}

func TestRemoveMessage(t *testing.T) {
	f := newFixture(t)

	var added struct {
		AddMessage struct {
			ID string `json:"id"`
		} `json:"addMessage"`
	}
	require.Empty(t, exec(t, f.api, `mutation { addMessage(text: "bye", userId: "u1") { id } }`, nil, &added))
	id := added.AddMessage.ID

	var removed struct {
		RemoveMessage struct {
			ID string `json:"id"`
		} `json:"removeMessage"`
	}
	require.Empty(t, exec(t, f.api, `mutation($id: String!) { removeMessage(id: $id) { id } }`,
		map[string]interface{}{"id": id}, &removed))
	assert.Equal(t, id, removed.RemoveMessage.ID)

	errs := exec(t, f.api, `query($id: String!) { message(id: $id) { id } }`, map[string]interface{}{"id": id}, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "NOT_FOUND", errs[0]["extensions"].(map[string]interface{})["code"])

	var list struct {
		MessagesByUserID pageData `json:"messagesByUserId"`
	}
	require.Empty(t, exec(t, f.api, `{ messagesByUserId(id: "u1") { data { id } cursor } }`, nil, &list))
	assert.Empty(t, list.MessagesByUserID.Data)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	require.Empty(t, exec(t, f.login,
		`mutation { addUser(name: "Foo", email: "foo@example.com", password: "default") { id } }`, nil, nil))

	var got struct {
		Login struct {
			Token  string `json:"token"`
			UserID string `json:"userId"`
		} `json:"login"`
	}
	require.Empty(t, exec(t, f.login, `{ login(email: "foo@example.com", password: "default") { token userId } }`, nil, &got))
	assert.NotEmpty(t, got.Login.UserID)
	assert.NoError(t, auth.NewGate(f.tokens).Check(got.Login.Token))

	errs := exec(t, f.login, `{ login(email: "foo@example.com", password: "nope") { token } }`, nil, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, account.MsgInvalidCredentials, errs[0]["message"])
	assert.Equal(t, "BAD_USER_INPUT", errs[0]["extensions"].(map[string]interface{})["code"])
}

func TestLoginSchemaHasNoTimeline(t *testing.T) {
	f := newFixture(t)
	errs := exec(t, f.login, `{ messages { cursor } }`, nil, nil)
	assert.NotEmpty(t, errs)
}

func TestMaxDepth(t *testing.T) {
	f := newFixture(t)
	errs := exec(t, f.api, `{ messages { data { user { messages { data { user { messages { data {
		user { messages { data { user { messages { data { id } } } } } } } } } } } } } } }`, nil, nil)
	assert.NotEmpty(t, errs)
}
