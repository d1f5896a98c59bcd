package domain

// Weapon is a closed enum of weapon categories a member can equip.
type Weapon string

const (
	WeaponSwordShield Weapon = "sword_shield"
	WeaponGreatsword  Weapon = "greatsword"
	WeaponDaggers     Weapon = "daggers"
	WeaponCrossbow    Weapon = "crossbow"
	WeaponLongbow     Weapon = "longbow"
	WeaponStaff       Weapon = "staff"
	WeaponWand        Weapon = "wand"
)

// Weapons lists every known weapon, in display order.
var Weapons = []Weapon{
	WeaponSwordShield,
	WeaponGreatsword,
	WeaponDaggers,
	WeaponCrossbow,
	WeaponLongbow,
	WeaponStaff,
	WeaponWand,
}

func (w Weapon) Valid() bool {
	for _, k := range Weapons {
		if w == k {
			return true
		}
	}
	return false
}

// Role is the combat role a weapon pair implies.
type Role string

const (
	RoleTank   Role = "tank"
	RoleHealer Role = "healer"
	RoleDPS    Role = "dps"
)

// RoleFromWeapons derives the combat role from a weapon pair.
// Sword & shield anywhere in the pair means tank, a wand means healer,
// everything else is dps. Tank wins over healer for the sns/wand pair.
func RoleFromWeapons(main, off Weapon) Role {
	if main == WeaponSwordShield || off == WeaponSwordShield {
		return RoleTank
	}
	if main == WeaponWand || off == WeaponWand {
		return RoleHealer
	}
	return RoleDPS
}
