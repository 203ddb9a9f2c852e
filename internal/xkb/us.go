package xkb

type key struct {
	plain   Sym
	shifted Sym
}

func ascii(plain, shifted byte) key {
	return key{plain: Sym(plain), shifted: Sym(shifted)}
}

// usKeys maps X11 keycodes (evdev + 8) for the builtin US layout.
var usKeys = map[Keycode]key{
	9:  {plain: SymEscape},
	10: ascii('1', '!'),
	11: ascii('2', '@'),
	12: ascii('3', '#'),
	13: ascii('4', '$'),
	14: ascii('5', '%'),
	15: ascii('6', '^'),
	16: ascii('7', '&'),
	17: ascii('8', '*'),
	18: ascii('9', '('),
	19: ascii('0', ')'),
	20: ascii('-', '_'),
	21: ascii('=', '+'),
	22: {plain: SymBackSpace},
	23: {plain: SymTab},
	24: ascii('q', 'Q'),
	25: ascii('w', 'W'),
	26: ascii('e', 'E'),
	27: ascii('r', 'R'),
	28: ascii('t', 'T'),
	29: ascii('y', 'Y'),
	30: ascii('u', 'U'),
	31: ascii('i', 'I'),
	32: ascii('o', 'O'),
	33: ascii('p', 'P'),
	34: ascii('[', '{'),
	35: ascii(']', '}'),
	36: {plain: SymReturn},
	37: {plain: SymControlL},
	38: ascii('a', 'A'),
	39: ascii('s', 'S'),
	40: ascii('d', 'D'),
	41: ascii('f', 'F'),
	42: ascii('g', 'G'),
	43: ascii('h', 'H'),
	44: ascii('j', 'J'),
	45: ascii('k', 'K'),
	46: ascii('l', 'L'),
	47: ascii(';', ':'),
	48: ascii('\'', '"'),
	49: ascii('`', '~'),
	50: {plain: SymShiftL},
	51: ascii('\\', '|'),
	52: ascii('z', 'Z'),
	53: ascii('x', 'X'),
	54: ascii('c', 'C'),
	55: ascii('v', 'V'),
	56: ascii('b', 'B'),
	57: ascii('n', 'N'),
	58: ascii('m', 'M'),
	59: ascii(',', '<'),
	60: ascii('.', '>'),
	61: ascii('/', '?'),
	62: {plain: SymShiftR},
	64: {plain: SymAltL},
	65: ascii(' ', ' '),
	105: {plain: SymControlR},
}

// usKeymapText is the blob handed to clients. It describes the same
// layout usKeys implements.
const usKeymapText = `xkb_keymap {
	xkb_keycodes "taki" {
		minimum = 8;
		maximum = 255;
		<ESC>  = 9;   <AE01> = 10;  <AE02> = 11;  <AE03> = 12;
		<AE04> = 13;  <AE05> = 14;  <AE06> = 15;  <AE07> = 16;
		<AE08> = 17;  <AE09> = 18;  <AE10> = 19;  <AE11> = 20;
		<AE12> = 21;  <BKSP> = 22;  <TAB>  = 23;  <AD01> = 24;
		<AD02> = 25;  <AD03> = 26;  <AD04> = 27;  <AD05> = 28;
		<AD06> = 29;  <AD07> = 30;  <AD08> = 31;  <AD09> = 32;
		<AD10> = 33;  <AD11> = 34;  <AD12> = 35;  <RTRN> = 36;
		<LCTL> = 37;  <AC01> = 38;  <AC02> = 39;  <AC03> = 40;
		<AC04> = 41;  <AC05> = 42;  <AC06> = 43;  <AC07> = 44;
		<AC08> = 45;  <AC09> = 46;  <AC10> = 47;  <AC11> = 48;
		<TLDE> = 49;  <LFSH> = 50;  <BKSL> = 51;  <AB01> = 52;
		<AB02> = 53;  <AB03> = 54;  <AB04> = 55;  <AB05> = 56;
		<AB06> = 57;  <AB07> = 58;  <AB08> = 59;  <AB09> = 60;
		<AB10> = 61;  <RTSH> = 62;  <LALT> = 64;  <SPCE> = 65;
		<RCTL> = 105;
	};
	xkb_types "taki" {
		virtual_modifiers Alt;
		type "ONE_LEVEL" {
			modifiers = none;
			level_name[Level1] = "Any";
		};
		type "TWO_LEVEL" {
			modifiers = Shift;
			map[Shift] = Level2;
			level_name[Level1] = "Base";
			level_name[Level2] = "Shift";
		};
		type "ALPHABETIC" {
			modifiers = Shift+Lock;
			map[Shift] = Level2;
			map[Lock] = Level2;
			level_name[Level1] = "Base";
			level_name[Level2] = "Caps";
		};
	};
	xkb_compatibility "taki" {
		virtual_modifiers Alt;
		interpret Shift_L { action = SetMods(modifiers=Shift); };
		interpret Shift_R { action = SetMods(modifiers=Shift); };
		interpret Control_L { action = SetMods(modifiers=Control); };
		interpret Control_R { action = SetMods(modifiers=Control); };
		interpret Alt_L { action = SetMods(modifiers=Mod1); };
	};
	xkb_symbols "taki" {
		name[Group1] = "English (US)";
		key <ESC>  { [ Escape ] };
		key <AE01> { [ 1, exclam ] };
		key <AE02> { [ 2, at ] };
		key <AE03> { [ 3, numbersign ] };
		key <AE04> { [ 4, dollar ] };
		key <AE05> { [ 5, percent ] };
		key <AE06> { [ 6, asciicircum ] };
		key <AE07> { [ 7, ampersand ] };
		key <AE08> { [ 8, asterisk ] };
		key <AE09> { [ 9, parenleft ] };
		key <AE10> { [ 0, parenright ] };
		key <AE11> { [ minus, underscore ] };
		key <AE12> { [ equal, plus ] };
		key <BKSP> { [ BackSpace ] };
		key <TAB>  { [ Tab ] };
		key <AD01> { [ q, Q ] };
		key <AD02> { [ w, W ] };
		key <AD03> { [ e, E ] };
		key <AD04> { [ r, R ] };
		key <AD05> { [ t, T ] };
		key <AD06> { [ y, Y ] };
		key <AD07> { [ u, U ] };
		key <AD08> { [ i, I ] };
		key <AD09> { [ o, O ] };
		key <AD10> { [ p, P ] };
		key <AD11> { [ bracketleft, braceleft ] };
		key <AD12> { [ bracketright, braceright ] };
		key <RTRN> { [ Return ] };
		key <LCTL> { [ Control_L ] };
		key <AC01> { [ a, A ] };
		key <AC02> { [ s, S ] };
		key <AC03> { [ d, D ] };
		key <AC04> { [ f, F ] };
		key <AC05> { [ g, G ] };
		key <AC06> { [ h, H ] };
		key <AC07> { [ j, J ] };
		key <AC08> { [ k, K ] };
		key <AC09> { [ l, L ] };
		key <AC10> { [ semicolon, colon ] };
		key <AC11> { [ apostrophe, quotedbl ] };
		key <TLDE> { [ grave, asciitilde ] };
		key <LFSH> { [ Shift_L ] };
		key <BKSL> { [ backslash, bar ] };
		key <AB01> { [ z, Z ] };
		key <AB02> { [ x, X ] };
		key <AB03> { [ c, C ] };
		key <AB04> { [ v, V ] };
		key <AB05> { [ b, B ] };
		key <AB06> { [ n, N ] };
		key <AB07> { [ m, M ] };
		key <AB08> { [ comma, less ] };
		key <AB09> { [ period, greater ] };
		key <AB10> { [ slash, question ] };
		key <RTSH> { [ Shift_R ] };
		key <LALT> { [ Alt_L ] };
		key <SPCE> { [ space ] };
		key <RCTL> { [ Control_R ] };
	};
};
`
