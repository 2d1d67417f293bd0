package server

import (
	"net/http"
	"net/url"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_EstablishesSession(t *testing.T) {
	cookie := registerUser(t, "Ada", "ada@example.com", "secret123")

	var user models.User
	require.NoError(t, testDB.Where("email = ?", "ada@example.com").First(&user).Error)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	// The session cookie makes the next page render as a logged-in visitor.
	resp := doGet(t, "/", cookie)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Log Out")
	assert.NotContains(t, body, `href="/login"`)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	registerUser(t, "Ben", "ben@example.com", "secret123")

	resp := doForm(t, "/register", url.Values{
		"name":     {"Ben Again"},
		"email":    {"ben@example.com"},
		"password": {"different1"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Equal(t, "Email already exists, try logging in instead.", flashMessage(t, resp))

	var count int64
	testDB.Model(&models.User{}).Where("email = ?", "ben@example.com").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRegister_InvalidInput(t *testing.T) {
	resp := doForm(t, "/register", url.Values{
		"name":     {"Cal"},
		"email":    {"cal@example.com"},
		"password": {"short"},
	})
	// Validation failures re-render the form inline.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "password")
	assert.Nil(t, responseCookie(resp, "quill_session"))
}

func TestLogin_UnknownEmail(t *testing.T) {
	resp := doForm(t, "/login", url.Values{
		"email":    {"ghost@example.com"},
		"password": {"secret123"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "That email does not exist, please try again.")
}

func TestLogin_WrongPassword(t *testing.T) {
	registerUser(t, "Dot", "dot@example.com", "secret123")

	resp := doForm(t, "/login", url.Values{
		"email":    {"dot@example.com"},
		"password": {"secret124"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Password incorrect, please try again.")
	assert.Nil(t, responseCookie(resp, "quill_session"))
}

func TestLogin_Success(t *testing.T) {
	registerUser(t, "Eve", "eve@example.com", "secret123")

	resp := doForm(t, "/login", url.Values{
		"email":    {"eve@example.com"},
		"password": {"secret123"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.NotNil(t, responseCookie(resp, "quill_session"))
}

func TestLogout(t *testing.T) {
	cookie := registerUser(t, "Fay", "fay@example.com", "secret123")

	resp := doGet(t, "/logout", cookie)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	cleared := responseCookie(resp, "quill_session")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// Logging out with no session at all is still a calm redirect.
	resp = doGet(t, "/logout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestCreatePost_RequiresLogin(t *testing.T) {
	resp := doGet(t, "/create-post")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Equal(t, "You need to login or register to do that.", flashMessage(t, resp))
}

func TestCreatePost_Flow(t *testing.T) {
	cookie := registerUser(t, "Gil", "gil@example.com", "secret123")

	resp := doForm(t, "/create-post", url.Values{
		"title":    {"A Day in the Alps"},
		"subtitle": {"Snow and silence"},
		"body":     {"It began with a train ride."},
		"img_url":  {"https://example.com/alps.jpg"},
	}, cookie)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var post models.Post
	require.NoError(t, testDB.Where("title = ?", "A Day in the Alps").First(&post).Error)
	assert.NotEmpty(t, post.Date)

	resp = doGet(t, "/")
	body := readBody(t, resp)
	assert.Contains(t, body, "A Day in the Alps")

	// Reusing the title re-renders the form with the input preserved.
	resp = doForm(t, "/create-post", url.Values{
		"title":    {"A Day in the Alps"},
		"subtitle": {"Second attempt"},
		"body":     {"different body"},
		"img_url":  {"https://example.com/other.jpg"},
	}, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = readBody(t, resp)
	assert.Contains(t, body, "already exists")
	assert.Contains(t, body, "Second attempt")
}

func TestShowPost_NotFound(t *testing.T) {
	resp := doGet(t, "/post99999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "That post does not exist.")
}

func TestShowPost_MalformedID(t *testing.T) {
	resp := doGet(t, "/postabc")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddComment_Anonymous(t *testing.T) {
	cookie := registerUser(t, "Hal", "hal@example.com", "secret123")
	post := createPostViaForm(t, cookie, "Anonymous Comment Target")

	resp := doForm(t, post.Path(), url.Values{"comment": {"drive-by"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Equal(t, "You need to login or register to comment.", flashMessage(t, resp))

	var count int64
	testDB.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(0), count, "anonymous comment must not be persisted")
}

func TestAddComment_LoggedIn(t *testing.T) {
	cookie := registerUser(t, "Ivy", "ivy@example.com", "secret123")
	post := createPostViaForm(t, cookie, "Comment Target")

	resp := doForm(t, post.Path(), url.Values{"comment": {"lovely writing"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, post.Path(), resp.Header.Get("Location"))

	resp = doGet(t, post.Path(), cookie)
	body := readBody(t, resp)
	assert.Contains(t, body, "lovely writing")
	assert.Contains(t, body, "Ivy")
}

func TestEditPost_NonOwnerRedirected(t *testing.T) {
	owner := registerUser(t, "Jan", "jan@example.com", "secret123")
	post := createPostViaForm(t, owner, "Owned Post")

	intruder := registerUser(t, "Kim", "kim@example.com", "secret123")
	resp := doGet(t, post.EditPath(), intruder)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, post.Path(), resp.Header.Get("Location"))
	assert.Equal(t, "You can only edit your own posts.", flashMessage(t, resp))

	resp = doForm(t, post.EditPath(), url.Values{
		"title":    {"Hijacked"},
		"subtitle": {"x"},
		"body":     {"x"},
		"img_url":  {"https://example.com/x.jpg"},
	}, intruder)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	var unchanged models.Post
	require.NoError(t, testDB.First(&unchanged, post.ID).Error)
	assert.Equal(t, "Owned Post", unchanged.Title)
}

func TestEditPost_OwnerUpdates(t *testing.T) {
	cookie := registerUser(t, "Lee", "lee@example.com", "secret123")
	post := createPostViaForm(t, cookie, "Editable Post")

	var before models.Post
	require.NoError(t, testDB.First(&before, post.ID).Error)

	resp := doGet(t, post.EditPath(), cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Editable Post")

	resp = doForm(t, post.EditPath(), url.Values{
		"title":    {"Editable Post, Revised"},
		"subtitle": {"now with edits"},
		"body":     {"revised body"},
		"img_url":  {"https://example.com/rev.jpg"},
	}, cookie)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, post.Path(), resp.Header.Get("Location"))

	var after models.Post
	require.NoError(t, testDB.First(&after, post.ID).Error)
	assert.Equal(t, "Editable Post, Revised", after.Title)
	assert.Equal(t, "revised body", after.Body)
	assert.Equal(t, before.Date, after.Date, "edits must not restamp the publication date")
}

func TestEditPost_RequiresLogin(t *testing.T) {
	resp := doGet(t, "/edit-post1")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestSubmitContact(t *testing.T) {
	resp := doForm(t, "/", url.Values{
		"name":    {"A Reader"},
		"email":   {"reader@example.com"},
		"message": {"Great blog!"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Equal(t, "Message sent!", flashMessage(t, resp))
}

func TestSubmitContact_MissingFields(t *testing.T) {
	resp := doForm(t, "/", url.Values{
		"email": {"reader@example.com"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "Please fill in your name and a message.", flashMessage(t, resp))
}

func TestStaticPages(t *testing.T) {
	for _, path := range []string{"/about", "/elements"} {
		resp := doGet(t, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestHealthEndpoints(t *testing.T) {
	resp := doGet(t, "/health/live")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doGet(t, "/health/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionForDeletedAccountIsAnonymous(t *testing.T) {
	cookie := registerUser(t, "Mia", "mia@example.com", "secret123")

	require.NoError(t, testDB.Where("email = ?", "mia@example.com").Delete(&models.User{}).Error)

	// The cookie still carries a valid token, but the account is gone: the
	// visitor is treated as anonymous and the stale cookie is dropped.
	resp := doGet(t, "/", cookie)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/login"`)

	cleared := responseCookie(resp, "quill_session")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestFlashShownOnceThenCleared(t *testing.T) {
	resp := doGet(t, "/create-post")
	flash := responseCookie(resp, "quill_flash")
	require.NotNil(t, flash)

	// First render shows the notice and clears the cookie.
	resp = doGet(t, "/login", flash)
	body := readBody(t, resp)
	assert.Contains(t, body, "You need to login or register to do that.")
	cleared := responseCookie(resp, "quill_flash")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}
