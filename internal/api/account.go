package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/kmedi-tour/internal/domain/account"
)

func accountView(e *jx.Encoder, s *account.Session) {
	e.ObjStart()
	encAccount(e, s)
	e.ObjEnd()
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) error {
	return viewState(w, r, s.Accounts, accountView)
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) error {
	var u account.ProfileUpdate
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		var dst **string
		switch key {
		case "name":
			dst = &u.Name
		case "email":
			dst = &u.Email
		case "avatar":
			dst = &u.Avatar
		case "country":
			dst = &u.Country
		case "countryCode":
			dst = &u.CountryCode
		default:
			return d.Skip()
		}
		v, err := optStr(d)
		*dst = v
		return err
	}); err != nil {
		return err
	}
	return updateState(w, r, s.Accounts, func(sess *account.Session) error {
		return sess.UpdateProfile(u)
	}, accountView)
}

func (s *Server) loginDemo(w http.ResponseWriter, r *http.Request) error {
	return updateState(w, r, s.Accounts, func(sess *account.Session) error {
		sess.LoginDemo()
		return nil
	}, accountView)
}

func (s *Server) loginProvider(w http.ResponseWriter, r *http.Request) error {
	p, err := account.ParseProvider(r.PathValue("provider"))
	if err != nil {
		return err
	}
	return updateState(w, r, s.Accounts, func(sess *account.Session) error {
		return sess.LoginWithProvider(p, s.now())
	}, accountView)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) error {
	return updateState(w, r, s.Accounts, func(sess *account.Session) error {
		sess.Logout()
		return nil
	}, accountView)
}
