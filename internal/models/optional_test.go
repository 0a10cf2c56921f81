package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type optionalPayload struct {
	FullName Optional[string] `json:"fullName"`
	Address  Optional[string] `json:"address"`
	City     Optional[string] `json:"city"`
}

func TestOptionalDistinguishesAbsentNullAndValue(t *testing.T) {
	var p optionalPayload
	require.NoError(t, json.Unmarshal([]byte(`{"address": null, "city": ""}`), &p))

	assert.False(t, p.FullName.Set)

	assert.True(t, p.Address.Set)
	assert.True(t, p.Address.Null)
	assert.Nil(t, p.Address.Ptr())

	assert.True(t, p.City.Set)
	assert.False(t, p.City.Null)
	require.NotNil(t, p.City.Ptr())
	assert.Equal(t, "", *p.City.Ptr())
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var p optionalPayload
	assert.Error(t, json.Unmarshal([]byte(`{"fullName": 12}`), &p))
}

func TestUserUpdateColumnsAndApply(t *testing.T) {
	oldAddress := "Old street 1"
	user := User{FullName: "Ann", Email: "a@x.com", Address: &oldAddress}

	upd := UserUpdate{
		FullName: Some("Ann Lee"),
		Address:  Null[string](),
		City:     Some("Riga"),
	}
	assert.False(t, upd.Empty())

	cols := upd.Columns()
	assert.Equal(t, map[string]interface{}{
		"full_name": "Ann Lee",
		"address":   nil,
		"city":      "Riga",
	}, cols)

	upd.Apply(&user)
	assert.Equal(t, "Ann Lee", user.FullName)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Nil(t, user.Address)
	require.NotNil(t, user.City)
	assert.Equal(t, "Riga", *user.City)
}

func TestProfileUpdateEmpty(t *testing.T) {
	assert.True(t, ProfileUpdate{}.Empty())
	assert.Empty(t, ProfileUpdate{}.Columns())

	var profile Profile
	ProfileUpdate{CompanyName: Some("Acme")}.Apply(&profile)
	require.NotNil(t, profile.CompanyName)
	assert.Equal(t, "Acme", *profile.CompanyName)
	assert.Nil(t, profile.Avatar)
}
