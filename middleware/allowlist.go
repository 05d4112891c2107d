package middleware

import (
	"regexp"
	"strings"
)

type methodRule struct {
	method string
	path   string
	prefix bool
}

// AllowList decides which requests skip token inspection.
type AllowList struct {
	exact    map[string]struct{}
	prefixes []string
	patterns []*regexp.Regexp
	methods  []methodRule
}

func NewAllowList() *AllowList {
	return &AllowList{exact: map[string]struct{}{}}
}

// Exact allows the given paths verbatim.
func (a *AllowList) Exact(paths ...string) *AllowList {
	for _, p := range paths {
		a.exact[p] = struct{}{}
	}
	return a
}

// Prefix allows every path starting with one of prefixes.
func (a *AllowList) Prefix(prefixes ...string) *AllowList {
	a.prefixes = append(a.prefixes, prefixes...)
	return a
}

// Pattern allows paths fully matching one of the regular expressions.
func (a *AllowList) Pattern(exprs ...string) *AllowList {
	for _, expr := range exprs {
		a.patterns = append(a.patterns, regexp.MustCompile(`^(?:`+expr+`)$`))
	}
	return a
}

// Method allows path for one HTTP method only. A trailing "/**" matches the
// path itself and anything under it.
func (a *AllowList) Method(method, path string) *AllowList {
	rule := methodRule{method: strings.ToUpper(method), path: path}
	if strings.HasSuffix(path, "/**") {
		rule.path = strings.TrimSuffix(path, "/**")
		rule.prefix = true
	}
	a.methods = append(a.methods, rule)
	return a
}

func (a *AllowList) Allowed(method, path string) bool {
	for _, r := range a.methods {
		if r.method != method {
			continue
		}
		if path == r.path || (r.prefix && strings.HasPrefix(path, r.path+"/")) {
			return true
		}
	}
	if _, ok := a.exact[path]; ok {
		return true
	}
	for _, p := range a.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	for _, re := range a.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// DefaultAllowList holds the public surface of the platform.
func DefaultAllowList() *AllowList {
	return NewAllowList().
		Exact(
			"/", "/favicon.ico", "/healthz", "/metrics",
			"/login", "/logout", "/reissue", "/session/check",
			"/users/check-id", "/users/check-nickname", "/users/check-email",
			"/users/find-id", "/users/check-user", "/users/reset-password",
			"/users/face-upload", "/users/check-face",
			"/social-redirect", "/sms/send", "/sms/verify",
			"/vet/upload-temp", "/vet/register",
			"/shelter/upload-temp", "/shelter/register", "/shelter/check",
			"/pet/register",
			"/api/v1/face-login/verify", "/face-login/success",
			"/board/top-liked", "/board/top-viewed", "/notice",
			"/api/consultation/vet-profiles/available",
			"/api/consultation/vet-profiles/online",
			"/api/consultation/vet-profiles/search",
			"/api/consultation/vet-profiles/top-rated",
		).
		Prefix(
			"/users/signup", "/oauth2/", "/login/oauth2/",
			"/api/info", "/info", "/api/adoption", "/api/hospitals",
			"/board/view-count", "/board/freeList", "/board/detail",
			"/comments/view", "/upload/", "/pet/list/", "/pet/image/",
		).
		Pattern(
			`/pet/\d+`,
			`/api/consultation/vet-profiles/vet/\d+`,
			`/api/consultation/consultation-reviews/vet/\d+`,
			`/api/consultation/vet-schedules/vet/\d+/available`,
		).
		Method("GET", "/faq").
		Method("GET", "/notice/**")
}
