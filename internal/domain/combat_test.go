package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleFromWeapons(t *testing.T) {
	cases := []struct {
		name string
		main Weapon
		off  Weapon
		want Role
	}{
		{"sns main is tank", WeaponSwordShield, WeaponGreatsword, RoleTank},
		{"sns offhand is tank", WeaponDaggers, WeaponSwordShield, RoleTank},
		{"wand main is healer", WeaponWand, WeaponStaff, RoleHealer},
		{"wand offhand is healer", WeaponLongbow, WeaponWand, RoleHealer},
		{"sns beats wand", WeaponSwordShield, WeaponWand, RoleTank},
		{"sns offhand beats wand main", WeaponWand, WeaponSwordShield, RoleTank},
		{"pure damage pair", WeaponGreatsword, WeaponCrossbow, RoleDPS},
		{"staff alone is dps", WeaponStaff, WeaponDaggers, RoleDPS},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RoleFromWeapons(tc.main, tc.off))
		})
	}
}

func TestWeaponValid(t *testing.T) {
	for _, w := range Weapons {
		assert.True(t, w.Valid(), string(w))
	}
	assert.False(t, Weapon("pike").Valid())
	assert.False(t, Weapon("").Valid())
}
