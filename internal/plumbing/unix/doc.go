// Package unix wraps the UNIX account, group and NFSv4 ACL primitives the
// control plane shells out to: adduser/addgroup/chpasswd/chsh/chfn/usermod
// and nfs4_getfacl/nfs4_setfacl. Every primitive is idempotent: calling it
// again with the same arguments reports Unchanged rather than erroring.
package unix
