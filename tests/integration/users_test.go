//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/bissquit/runningsport/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	BirthDate string `json:"birthdate"`
	Phone     string `json:"phone"`
	Status    bool   `json:"status"`
	Role      string `json:"role"`
}

type errorData struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// forEachStore runs fn against the PostgreSQL and the MongoDB backed app.
func forEachStore(t *testing.T, fn func(t *testing.T, newClient func(t *testing.T) *testutil.Client)) {
	t.Run("postgres", func(t *testing.T) { fn(t, newTestClient) })
	t.Run("mongo", func(t *testing.T) { fn(t, newMongoClient) })
}

func getUser(t *testing.T, client *testutil.Client, email string) (int, userData) {
	t.Helper()
	resp, err := client.GET("/api/v1/users/" + email + "/detail")
	require.NoError(t, err)

	var result struct {
		Data userData `json:"data"`
	}
	status := resp.StatusCode
	if status == http.StatusOK {
		testutil.DecodeJSON(t, resp, &result)
	} else {
		_ = resp.Body.Close()
	}
	return status, result.Data
}

func TestUsers_Create(t *testing.T) {
	forEachStore(t, func(t *testing.T, newClient func(t *testing.T) *testutil.Client) {
		client := newClient(t)
		email := testutil.RandomEmail()

		resp, err := client.POST("/api/v1/users/create", map[string]string{
			"email":     email,
			"password":  "password123",
			"firstname": "Ana",
			"lastname":  "Lopez",
			"birthdate": "1990-05-01",
			"phone":     "600111222",
			"role":      "admin",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var result struct {
			Data userData `json:"data"`
		}
		testutil.DecodeJSON(t, resp, &result)
		assert.NotEmpty(t, result.Data.ID)
		assert.Equal(t, email, result.Data.Email)
		assert.Equal(t, "Ana", result.Data.FirstName)
		assert.Equal(t, "1990-05-01", result.Data.BirthDate)
		assert.True(t, result.Data.Status)
		assert.Equal(t, "client", result.Data.Role, "role is never taken from the request")
	})
}

func TestUsers_Create_DuplicateActiveEmail(t *testing.T) {
	forEachStore(t, func(t *testing.T, newClient func(t *testing.T) *testutil.Client) {
		client := newClient(t)
		email := testutil.RandomEmail()
		client.CreateUser(t, email, "password123")

		resp, err := client.POST("/api/v1/users/create", map[string]string{
			"email":    email,
			"password": "other-password",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestUsers_Create_Validation(t *testing.T) {
	forEachStore(t, func(t *testing.T, newClient func(t *testing.T) *testutil.Client) {
		client := newClient(t).WithoutValidation()

		resp, err := client.POST("/api/v1/users/create", map[string]string{
			"email":    "not-an-email",
			"password": "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var result errorData
		testutil.DecodeJSON(t, resp, &result)
		assert.Equal(t, http.StatusBadRequest, result.Error.Code)
		assert.Equal(t, "validation error", result.Error.Message)
	})
}

func TestUsers_ProtectedRoutesRequireToken(t *testing.T) {
	forEachStore(t, func(t *testing.T, newClient func(t *testing.T) *testutil.Client) {
		client := newClient(t)
		email := testutil.RandomEmail()
		client.CreateUser(t, email, "password123")
		raw := client.WithoutValidation()

		tests := []struct {
			name   string
			header string
		}{
			{name: "missing header", header: ""},
			{name: "token without scheme", header: "abc"},
			{name: "forged token", header: "Bearer abc.def.ghi"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				for _, route := range []struct{ method, path string }{
					{http.MethodGet, "/api/v1/users/"},
					{http.MethodGet, "/api/v1/users/" + email + "/detail"},
					{http.MethodPut, "/api/v1/users/" + email + "/update"},
					{http.MethodDelete, "/api/v1/users/" + email + "/delete"},
				} {
					resp, err := raw.DoWithHeader(route.method, route.path, tt.header)
					require.NoError(t, err)
					assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
					_ = resp.Body.Close()
				}
			})
		}
	})
}

func TestUsers_Authenticate(t *testing.T) {
	forEachStore(t, func(t *testing.T, newClient func(t *testing.T) *testutil.Client) {
		client := newClient(t)
		email := testutil.RandomEmail()
		client.CreateUser(t, email, "password123")

		resp, err := client.POST("/api/v1/users/authenticate", map[string]string{
			"email":    email,
			"password": "password123",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Data struct {
				userData
				Token string `json:"token"`
			} `json:"data"`
		}
		testutil.DecodeJSON(t, resp, &result)
		assert.NotEmpty(t, result.Data.Token)
		assert.Equal(t, email, result.Data.Email)

		client.Token = result.Data.Token
		status, user := getUser(t, client, email)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, result.Data.ID, user.ID)

		// The scheme word is not inspected.
		resp, err = client.DoWithHeader(http.MethodGet, "/api/v1/users/", "Token "+result.Data.Token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestUsers_Authenticate_Rejected(t *testing.T) {
	forEachStore(t, func(t *testing.T, newClient func(t *testing.T) *testutil.Client) {
		client := newClient(t)
		email := testutil.RandomEmail()
		client.CreateUser(t, email, "password123")

		for name, creds := range map[string]map[string]string{
			"wrong password": {"email": email, "password": "wrong"},
			"unknown email":  {"email": testutil.RandomEmail(), "password": "password123"},
		} {
			t.Run(name, func(t *testing.T) {
				resp, err := client.POST("/api/v1/users/authenticate", creds)
				require.NoError(t, err)
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

				var result errorData
				testutil.DecodeJSON(t, resp, &result)
				assert.Equal(t, "invalid email or password", result.Error.Message)
			})
		}
	})
}

func TestUsers_List(t *testing.T) {
	forEachStore(t, func(t *testing.T, newClient func(t *testing.T) *testutil.Client) {
		client := newClient(t)
		self, _ := client.SignUp(t)
		other := testutil.RandomEmail()
		client.CreateUser(t, other, "password123")
		deleted := testutil.RandomEmail()
		client.CreateUser(t, deleted, "password123")

		resp, err := client.DELETE("/api/v1/users/" + deleted + "/delete")
		require.NoError(t, err)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		_ = resp.Body.Close()

		resp, err = client.GET("/api/v1/users/")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Data []userData `json:"data"`
		}
		testutil.DecodeJSON(t, resp, &result)

		emails := make(map[string]bool, len(result.Data))
		for _, u := range result.Data {
			assert.True(t, u.Status, "list returns only active records")
			emails[u.Email] = true
		}
		assert.True(t, emails[self])
		assert.True(t, emails[other])
		assert.False(t, emails[deleted])
	})
}

func TestUsers_Update(t *testing.T) {
	forEachStore(t, func(t *testing.T, newClient func(t *testing.T) *testutil.Client) {
		client := newClient(t)
		email, _ := client.SignUp(t)
		_, before := getUser(t, client, email)

		resp, err := client.PUT("/api/v1/users/"+email+"/update", map[string]string{
			"firstname": "Maria",
			"phone":     "699000000",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Data userData `json:"data"`
		}
		testutil.DecodeJSON(t, resp, &result)
		assert.Equal(t, "Maria", result.Data.FirstName)
		assert.Equal(t, before.LastName, result.Data.LastName)
		assert.Equal(t, "699000000", result.Data.Phone)
		assert.Equal(t, before.ID, result.Data.ID)
		assert.Equal(t, before.BirthDate, result.Data.BirthDate)

		// Repeating the same values is not an error.
		resp, err = client.PUT("/api/v1/users/"+email+"/update", map[string]string{"firstname": "Maria"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestUsers_Update_IgnoresProtectedFields(t *testing.T) {
	forEachStore(t, func(t *testing.T, newClient func(t *testing.T) *testutil.Client) {
		client := newClient(t)
		email, password := client.SignUp(t)

		resp, err := client.WithoutValidation().PUT("/api/v1/users/"+email+"/update", map[string]interface{}{
			"email":    testutil.RandomEmail(),
			"password": "hijacked",
			"role":     "admin",
			"status":   false,
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		status, user := getUser(t, client, email)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "client", user.Role)
		assert.True(t, user.Status)

		client.LoginAs(t, email, password)
	})
}

func TestUsers_Update_UnknownEmail(t *testing.T) {
	forEachStore(t, func(t *testing.T, newClient func(t *testing.T) *testutil.Client) {
		client := newClient(t)
		client.SignUp(t)

		resp, err := client.PUT("/api/v1/users/"+testutil.RandomEmail()+"/update", map[string]string{"firstname": "X"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestUsers_Delete(t *testing.T) {
	forEachStore(t, func(t *testing.T, newClient func(t *testing.T) *testutil.Client) {
		client := newClient(t)
		client.SignUp(t)
		email := testutil.RandomEmail()
		client.CreateUser(t, email, "password123")

		resp, err := client.DELETE("/api/v1/users/" + email + "/delete")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		_ = resp.Body.Close()

		status, _ := getUser(t, client, email)
		assert.Equal(t, http.StatusNotFound, status)

		resp, err = client.DELETE("/api/v1/users/" + email + "/delete")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()

		resp, err = client.POST("/api/v1/users/authenticate", map[string]string{
			"email":    email,
			"password": "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "deleted users cannot authenticate")
		_ = resp.Body.Close()
	})
}

func TestUsers_EmailReusableAfterDelete(t *testing.T) {
	forEachStore(t, func(t *testing.T, newClient func(t *testing.T) *testutil.Client) {
		client := newClient(t)
		client.SignUp(t)
		email := testutil.RandomEmail()
		client.CreateUser(t, email, "password123")
		_, first := getUser(t, client, email)

		resp, err := client.DELETE("/api/v1/users/" + email + "/delete")
		require.NoError(t, err)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		_ = resp.Body.Close()

		client.CreateUser(t, email, "new-password")
		status, second := getUser(t, client, email)
		require.Equal(t, http.StatusOK, status)
		assert.NotEqual(t, first.ID, second.ID)

		client.LoginAs(t, email, "new-password")
	})
}
