package tokens

import (
	"time"

	"github.com/Skotchmaster/business_site/internal/models"
)

type Pair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// Issuer mints token pairs for authenticated accounts.
type Issuer struct {
	codec *Codec
}

func NewIssuer(codec *Codec) *Issuer {
	return &Issuer{codec: codec}
}

// UserFromAccount copies the fields a token may carry. New account fields
// stay out of tokens unless they are added here.
func UserFromAccount(u *models.User) User {
	return User{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
	}
}

func (i *Issuer) IssueTokens(u *models.User) (*Pair, error) {
	accessToken, accessExp, err := i.IssueAccessToken(u)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExp, err := i.codec.Sign(UserFromAccount(u), RefreshToken, u.ID.String())
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (i *Issuer) IssueAccessToken(u *models.User) (string, time.Time, error) {
	return i.codec.Sign(UserFromAccount(u), AccessToken, u.ID.String())
}
