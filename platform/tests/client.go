package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"mentorhub/platform/auth"

	"github.com/go-chi/chi/v5"
)

type httpTestRequest struct {
	api http.Handler

	method   string
	endpoint string
	headers  map[string]string
	json     interface{}
	body     io.Reader
}

func newHttpTestRequest(api http.Handler, method, endpoint string) *httpTestRequest {
	return &httpTestRequest{
		api:      api,
		method:   method,
		endpoint: endpoint,
	}
}

func (r *httpTestRequest) Header(key, value string) *httpTestRequest {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

func (r *httpTestRequest) Auth(token string) *httpTestRequest {
	return r.Header("Authorization", fmt.Sprintf("Bearer %v", token))
}

func (r *httpTestRequest) Json(data interface{}) *httpTestRequest {
	r.json = data
	return r
}

func (r *httpTestRequest) Body(body io.Reader) *httpTestRequest {
	r.body = body
	return r
}

// response body will be parsed into result, passing nil indicates that no result is returned.
func (r *httpTestRequest) Do(result interface{}) error {
	if r.json != nil {
		body := new(bytes.Buffer)
		err := json.NewEncoder(body).Encode(r.json)
		if err != nil {
			return fmt.Errorf("error encoding json body for endpoint %v: %w", r.endpoint, err)
		}
		r.body = body
	}

	req := httptest.NewRequest(r.method, r.endpoint, r.body)
	if r.headers != nil {
		for k, v := range r.headers {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()

	r.api.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		if res.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		return fmt.Errorf("%v request to endpoint %v returned status %d, content '%v'", r.method, r.endpoint, res.StatusCode, w.Body.String())
	}

	if result != nil {
		err := json.NewDecoder(res.Body).Decode(result)
		if err != nil {
			return fmt.Errorf("error parsing %v response from endpoint %v: %w", r.method, r.endpoint, err)
		}
	}

	return nil
}

// DoRaw runs the request and returns the raw response status and body for
// tests that assert on error payloads.
func (r *httpTestRequest) DoRaw() (int, map[string]string, error) {
	if r.json != nil {
		body := new(bytes.Buffer)
		err := json.NewEncoder(body).Encode(r.json)
		if err != nil {
			return 0, nil, fmt.Errorf("error encoding json body for endpoint %v: %w", r.endpoint, err)
		}
		r.body = body
	}

	req := httptest.NewRequest(r.method, r.endpoint, r.body)
	if r.headers != nil {
		for k, v := range r.headers {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()

	r.api.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()

	var body map[string]string
	_ = json.NewDecoder(res.Body).Decode(&body)

	return res.StatusCode, body, nil
}

var ErrUnauthorized = errors.New("unauthorized")

type client struct {
	api       chi.Router
	authToken string
	user      auth.SessionUser
}

func (c *client) Get(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "GET", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Post(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "POST", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Put(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "PUT", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Delete(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "DELETE", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

type companyInfo struct {
	Admin   auth.SessionUser `json:"admin"`
	Company struct {
		ID        uint   `json:"ID"`
		LegalName string `json:"LegalName"`
	} `json:"company"`
}

func (c *client) signup(name, email, company, taxId, password string) (companyInfo, error) {
	body := map[string]string{
		"name": name, "email": email, "company": company, "tax_id": taxId, "password": password,
	}

	var res companyInfo
	err := c.Post("/signup").Json(body).Do(&res)
	return res, err
}

type sessionResult struct {
	Token string           `json:"token"`
	User  auth.SessionUser `json:"user"`
}

func (c *client) login(email, password string) error {
	var res sessionResult
	err := c.Post("/auth/login").Json(map[string]string{"email": email, "password": password}).Do(&res)
	if err != nil {
		return err
	}

	c.authToken = res.Token
	c.user = res.User

	return nil
}

func (c *client) check() (sessionResult, error) {
	var res sessionResult
	err := c.Get("/auth/check").Do(&res)
	return res, err
}

type collaboratorParams struct {
	NationalID   string `json:"national_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	UserKind     string `json:"user_kind"`
	DepartmentID uint   `json:"department_id"`
	CompanyID    uint   `json:"company_id"`
	RoleID       uint   `json:"role_id"`
}

func (c *client) createCollaborator(params collaboratorParams) (auth.SessionUser, error) {
	var res auth.SessionUser
	err := c.Post("/collaborators").Json(params).Do(&res)
	return res, err
}

func (c *client) listMentors(companyId uint) ([]auth.SessionUser, error) {
	var res []auth.SessionUser
	err := c.Get(fmt.Sprintf("/collaborators/mentors?company_id=%d", companyId)).Do(&res)
	return res, err
}

func (c *client) listMentees(companyId uint) ([]auth.SessionUser, error) {
	var res []auth.SessionUser
	err := c.Get(fmt.Sprintf("/collaborators/mentees?company_id=%d", companyId)).Do(&res)
	return res, err
}

func (c *client) menteesOfMentor(mentorId uint) ([]auth.SessionUser, error) {
	var res []auth.SessionUser
	err := c.Get(fmt.Sprintf("/collaborators/mentor/%d/mentees", mentorId)).Do(&res)
	return res, err
}

type trackParams struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Program      string `json:"program"`
	TrackTypeID  uint   `json:"track_type_id"`
	DepartmentID uint   `json:"department_id"`
	CompanyID    uint   `json:"company_id"`
	DeadlineID   uint   `json:"deadline_id"`
}

type trackResult struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Program       string `json:"program"`
	TrackTypeName string `json:"track_type_name"`
	DeadlineLabel string `json:"deadline_label"`
}

func (c *client) createTrack(params trackParams) (trackResult, error) {
	var res trackResult
	err := c.Post("/tracks").Json(params).Do(&res)
	return res, err
}

type pdiParams struct {
	TrackID   uint   `json:"track_id"`
	Program   string `json:"program"`
	TrackName string `json:"track_name"`
	MentorID  uint   `json:"mentor_id"`
	MenteeID  uint   `json:"mentee_id"`
	SkillTags string `json:"skill_tags"`
}

type pdiResult struct {
	ID            uint   `json:"ID"`
	Program       string `json:"Program"`
	TrackTypeName string `json:"TrackTypeName"`
	TrackName     string `json:"TrackName"`
	MentorName    string `json:"MentorName"`
	Status        string `json:"Status"`
	Evaluation    string `json:"Evaluation"`
}

func (c *client) createPdi(params pdiParams) (pdiResult, error) {
	var res pdiResult
	err := c.Post("/pdis").Json(params).Do(&res)
	return res, err
}

type pdiEditParams struct {
	TrackID    uint   `json:"track_id"`
	Program    string `json:"program"`
	TrackName  string `json:"track_name"`
	MentorID   uint   `json:"mentor_id"`
	MenteeID   uint   `json:"mentee_id"`
	SkillTags  string `json:"skill_tags"`
	Status     string `json:"status"`
	Evaluation string `json:"evaluation"`
}

func (c *client) editPdi(pdiId uint, params pdiEditParams) error {
	return c.Put(fmt.Sprintf("/pdis/%d", pdiId)).Json(params).Do(nil)
}
