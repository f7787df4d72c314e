package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/projecthub/pkg/errors"
)

func TestCheckOwner(t *testing.T) {
	for a := int64(1); a <= 4; a++ {
		ctx := WithClaims(context.Background(), Claims{UserID: a})
		for b := int64(1); b <= 4; b++ {
			err := CheckOwner(ctx, b)
			if a == b {
				require.NoError(t, err, "a=%d b=%d", a, b)
				continue
			}
			require.True(t, apperrors.IsCode(err, CodeForbidden), "a=%d b=%d", a, b)
		}
	}
}

func TestCheckOwner_DeniesWithoutIdentity(t *testing.T) {
	require.True(t, apperrors.IsCode(CheckOwner(context.Background(), 1), CodeForbidden))

	ctx := WithClaims(context.Background(), Claims{})
	require.True(t, apperrors.IsCode(CheckOwner(ctx, 0), CodeForbidden))

	ctx = WithClaims(context.Background(), Claims{UserID: 3})
	require.True(t, apperrors.IsCode(CheckOwner(ctx, 0), CodeForbidden))
	require.True(t, apperrors.IsCode(CheckOwner(ctx, -3), CodeForbidden))
}

func TestClaimsFrom(t *testing.T) {
	_, ok := ClaimsFrom(context.Background())
	require.False(t, ok)

	ctx := WithClaims(context.Background(), Claims{UserID: 11, Email: "e@x.io"})
	claims, ok := ClaimsFrom(ctx)
	require.True(t, ok)
	require.Equal(t, int64(11), claims.UserID)
}
