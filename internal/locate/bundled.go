package locate

// bundledResources is the compiled-in fallback for the handful of
// foundational MIBs nearly every other module ultimately imports from,
// so a fresh checkout can resolve RFC1213-MIB's import closure without
// any search directory configured. Grounded on the real RFC 1155/1213
// text, trimmed to the subset this module's grammar parses.
var bundledResources = map[string]string{
	"RFC1155-SMI": rfc1155smi,
	"RFC1213-MIB": rfc1213mib,
}

const rfc1155smi = `RFC1155-SMI DEFINITIONS ::= BEGIN

internet      OBJECT IDENTIFIER ::= { iso 3 6 1 }
directory     OBJECT IDENTIFIER ::= { internet 1 }
mgmt          OBJECT IDENTIFIER ::= { internet 2 }
experimental  OBJECT IDENTIFIER ::= { internet 3 }
private       OBJECT IDENTIFIER ::= { internet 4 }
enterprises   OBJECT IDENTIFIER ::= { private 1 }

mib-2 OBJECT IDENTIFIER ::= { mgmt 1 }

END
`

const rfc1213mib = `RFC1213-MIB DEFINITIONS ::= BEGIN

IMPORTS
    mib-2 FROM RFC1155-SMI;

system    OBJECT IDENTIFIER ::= { mib-2 1 }
interfaces OBJECT IDENTIFIER ::= { mib-2 2 }

sysDescr OBJECT-TYPE
    SYNTAX OCTET STRING
    ACCESS read-only
    STATUS mandatory
    DESCRIPTION "A textual description of the entity."
    ::= { system 1 }

sysObjectID OBJECT-TYPE
    SYNTAX OBJECT IDENTIFIER
    ACCESS read-only
    STATUS mandatory
    DESCRIPTION "The vendor's authoritative identification of this device."
    ::= { system 2 }

sysUpTime OBJECT-TYPE
    SYNTAX INTEGER
    ACCESS read-only
    STATUS mandatory
    DESCRIPTION "The time since the network management portion of the system was last re-initialized."
    ::= { system 3 }

END
`
