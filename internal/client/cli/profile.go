package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

func optional(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// WhoAmI prints the cached identity.
func (a *App) WhoAmI(_ context.Context) error {
	id := a.session.State().Identity
	if id == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	verified := "no"
	if id.EmailVerified {
		verified = "yes"
	}

	fmt.Fprintf(a.out, "ID:        %d\n", id.ID)
	fmt.Fprintf(a.out, "Username:  %s\n", id.Username)
	fmt.Fprintf(a.out, "Email:     %s (verified: %s)\n", id.Email, verified)
	fmt.Fprintf(a.out, "Full name: %s\n", optional(id.FullName))
	fmt.Fprintf(a.out, "Bio:       %s\n", optional(id.Bio))
	fmt.Fprintf(a.out, "Picture:   %s\n", optional(id.ProfilePicture))
	return nil
}

// EditProfile prompts for the editable fields. Empty answers keep the
// current value.
func (a *App) EditProfile(ctx context.Context) error {
	var upd models.ProfileUpdate

	fullName, err := getSimpleText(a.reader, "Full name (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if fullName != "" {
		upd.FullName = models.String(fullName)
	}

	username, err := getSimpleText(a.reader, "Username (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if username != "" {
		upd.Username = models.String(username)
	}

	bio, err := getMultiline(a.reader, "Bio (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if bio != "" {
		upd.Bio = models.String(bio)
	}

	if upd == (models.ProfileUpdate{}) {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	if err := a.session.UpdateProfile(ctx, upd); err != nil {
		return a.reportFailure(err)
	}
	fmt.Fprintln(a.out, "Profile updated")
	return nil
}

// UploadAvatar sends the file at path as the new profile picture.
func (a *App) UploadAvatar(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	defer f.Close()

	ref, err := a.session.UploadProfilePicture(ctx, filepath.Base(path), f)
	if err != nil {
		return a.reportFailure(err)
	}
	fmt.Fprintln(a.out, "Profile picture uploaded:", ref)
	return nil
}

// Status prints the session state as the manager sees it.
func (a *App) Status(_ context.Context) error {
	st := a.session.State()

	fmt.Fprintf(a.out, "Status:  %s\n", st.Status)
	fmt.Fprintf(a.out, "View:    %s\n", a.currentRoute())
	if st.Identity != nil {
		fmt.Fprintf(a.out, "User:    %s\n", st.Identity.Username)
	}
	if st.LastError != "" {
		fmt.Fprintf(a.out, "Last error: %s\n", st.LastError)
	}
	return nil
}
